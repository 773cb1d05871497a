package handler

import (
	"errors"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"restaurant-booking/internal/model"
)

// RegisterValidators 向 gin 绑定引擎注册业务字段校验标签，可重复调用
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin 绑定引擎不是 validator.Validate")
	}

	rules := map[string]validator.Func{
		"civildate": func(fl validator.FieldLevel) bool {
			_, err := model.ParseDate(fl.Field().String())
			return err == nil
		},
		"clocktime": func(fl validator.FieldLevel) bool {
			_, err := model.ParseTimeOfDay(fl.Field().String())
			return err == nil
		},
		"weekday": func(fl validator.FieldLevel) bool {
			_, ok := model.NormalizeWeekday(fl.Field().String())
			return ok
		},
		"table_location": func(fl validator.FieldLevel) bool {
			return model.TableLocation(fl.Field().String()).Valid()
		},
		"table_status": func(fl validator.FieldLevel) bool {
			return model.TableStatus(fl.Field().String()).Valid()
		},
		"reservation_status": func(fl validator.FieldLevel) bool {
			return model.ReservationStatus(fl.Field().String()).Valid()
		},
		"preference": func(fl validator.FieldLevel) bool {
			return model.Preference(fl.Field().String()).Valid()
		},
	}

	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

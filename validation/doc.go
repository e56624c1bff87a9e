// Package validation validates configuration structs through struct tags
// using github.com/go-playground/validator.
//
//	type Engine struct {
//	    Mode    string `mapstructure:"mode" validate:"oneof=sequential parallel"`
//	    Workers int    `mapstructure:"workers" validate:"gte=0"`
//	}
//	err := validation.Validate(cfg)
//
// Failures are returned as an INVALID_ARGUMENT *errors.AppError whose
// details list every offending field.
package validation

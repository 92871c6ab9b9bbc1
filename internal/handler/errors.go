package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/EgehanKilicarslan/recipe-api/internal/database/repository"
	"github.com/EgehanKilicarslan/recipe-api/internal/database/service"
)

const (
	msgNotFound        = "Not found."
	msgInternal        = "Internal server error"
	msgValidation      = "Validation failed"
	msgEmailTaken      = "user with this email already exists."
	msgEmailInvalid    = "Enter a valid email address."
	msgBadCredentials  = "Unable to authenticate with provided credentials."
	msgInvalidInteger  = "A valid integer is required."
	msgInvalidNumber   = "A valid number is required."
	msgInvalidString   = "Not a valid string."
	msgInvalidList     = "Expected a list of items."
	msgInvalidObject   = "Invalid data. Expected a dictionary."
	msgMalformedJSON   = "JSON parse error - malformed request body."
	msgNoFile          = "No file was submitted."
	msgFileTooLarge    = "The submitted file is too large."
	nonFieldErrorsName = "non_field_errors"
)

func init() {
	// Report validator failures under their JSON names.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return field.Name
			}
			return name
		})
	}
}

// respondError maps service and repository errors to HTTP responses.
// Missing and foreign rows both answer 404.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	if verr, ok := service.AsValidationError(err); ok {
		respondValidation(c, verr)
		return
	}

	switch {
	case errors.Is(err, repository.ErrRecipeNotFound),
		errors.Is(err, repository.ErrAttributeNotFound),
		errors.Is(err, repository.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": msgNotFound})
	case errors.Is(err, service.ErrEmailAlreadyExists):
		respondValidation(c, service.NewFieldError("email", msgEmailTaken))
	case errors.Is(err, service.ErrEmailRequired):
		respondValidation(c, service.NewFieldError("email", service.MsgRequired))
	case errors.Is(err, service.ErrInvalidCredentials):
		respondValidation(c, service.NewFieldError(nonFieldErrorsName, msgBadCredentials))
	case errors.Is(err, service.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token."})
	default:
		logger.Error("❌ [Handler] Internal server error", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
	}
}

func respondValidation(c *gin.Context, verr *service.ValidationError) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msgValidation, "fields": verr.Fields})
}

func respondNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": msgNotFound})
}

// bindJSON decodes the request body into dst and runs its binding rules.
// An empty body decodes as an empty object. Problems come back as a
// ValidationError.
func bindJSON(c *gin.Context, dst any) error {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return service.NewFieldError(nonFieldErrorsName, msgMalformedJSON)
	}
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, dst); err != nil {
			return translateDecodeError(err)
		}
	}
	if err := binding.Validator.ValidateStruct(dst); err != nil {
		return translateValidatorError(err)
	}
	return nil
}

func translateDecodeError(err error) *service.ValidationError {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			return service.NewFieldError(nonFieldErrorsName, msgInvalidObject)
		}
		return service.NewFieldError(field, typeMessage(typeErr.Type))
	}
	return service.NewFieldError(nonFieldErrorsName, msgMalformedJSON)
}

func typeMessage(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return msgInvalidInteger
	case reflect.Float32, reflect.Float64:
		return msgInvalidNumber
	case reflect.String:
		return msgInvalidString
	case reflect.Slice, reflect.Array:
		return msgInvalidList
	case reflect.Struct, reflect.Map:
		return msgInvalidObject
	default:
		return "Invalid value."
	}
}

func translateValidatorError(err error) *service.ValidationError {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return service.NewFieldError(nonFieldErrorsName, err.Error())
	}

	verr := &service.ValidationError{}
	for _, fe := range errs {
		verr.Add(fe.Field(), validatorMessage(fe))
	}
	return verr
}

func validatorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return service.MsgRequired
	case "email":
		return msgEmailInvalid
	case "max":
		n, _ := strconv.Atoi(fe.Param())
		return fmt.Sprintf(service.MsgMaxLength, n)
	case "min":
		n, _ := strconv.Atoi(fe.Param())
		return fmt.Sprintf(service.MsgMinLength, n)
	default:
		return "Invalid value."
	}
}

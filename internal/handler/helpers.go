package handler

import (
	"net/http"
	"reflect"

	"github.com/AdriellysonCT/NinjaRestaurante-sub001/internal/apierror"
	"github.com/AdriellysonCT/NinjaRestaurante-sub001/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON inválido: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// tenantID extracts the restaurant scope from the JWT claims. Restaurant
// users only ever see their own tenant; a token without the claim (an admin
// hitting a tenant route) is rejected.
func tenantID(c *gin.Context) (uuid.UUID, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil || claims.RestauranteID == "" {
		c.JSON(http.StatusForbidden, apierror.New("Token sem restaurante associado"))
		return uuid.Nil, false
	}
	id, err := uuid.Parse(claims.RestauranteID)
	if err != nil {
		c.JSON(http.StatusForbidden, apierror.New("Token sem restaurante associado"))
		return uuid.Nil, false
	}
	return id, true
}

// operadorID extracts the authenticated user id.
func operadorID(c *gin.Context) (uuid.UUID, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Autenticação necessária"))
		return uuid.Nil, false
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Autenticação necessária"))
		return uuid.Nil, false
	}
	return id, true
}

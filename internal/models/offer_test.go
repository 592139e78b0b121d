package models

import (
	"net/http"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f64(v float64) *float64 { return &v }

func TestLineItemTotal(t *testing.T) {
	item := OfferLineItem{Label: "Fenêtres", Quantity: f64(10), UnitPrice: f64(500)}
	total := item.Total()
	require.NotNil(t, total)
	assert.Equal(t, 5000.0, *total)
}

func TestLineItemTotalMissingPrice(t *testing.T) {
	item := OfferLineItem{Label: "Fenêtres", Quantity: f64(10)}
	assert.Nil(t, item.Total(), "missing unit price must not be coerced to zero")
}

func TestLineItemTotalMissingQuantity(t *testing.T) {
	item := OfferLineItem{Label: "Fenêtres", UnitPrice: f64(500)}
	assert.Nil(t, item.Total(), "missing quantity must not be coerced to zero")
}

func TestErrorKinds(t *testing.T) {
	err := NewError(KindNotInvited, "company %s is not invited", "c-1")
	assert.Equal(t, "company c-1 is not invited", err.Error())
	assert.True(t, IsKind(err, KindNotInvited))
	assert.False(t, IsKind(err, KindNotFound))
	assert.Equal(t, KindNotInvited, KindOf(err))
}

func TestKindOfWrappedError(t *testing.T) {
	err := eris.Wrap(NewError(KindAlreadyAdjudicated, "tender gone"), "award: adjudicate")
	assert.Equal(t, KindAlreadyAdjudicated, KindOf(err))
}

func TestKindOfInfrastructureError(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(eris.New("connection refused")))
}

func TestKindHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, KindNotFound.HTTPStatus())
	assert.Equal(t, http.StatusForbidden, KindNotInvited.HTTPStatus())
	assert.Equal(t, http.StatusBadRequest, KindInvalidOffer.HTTPStatus())
	assert.Equal(t, http.StatusBadRequest, KindValidation.HTTPStatus())
	assert.Equal(t, http.StatusConflict, KindAlreadyAdjudicated.HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, KindInternal.HTTPStatus())
}

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse(http.StatusForbidden, "company c-1 is not invited")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "company c-1 is not invited", resp.Error())
}

package lib

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshotWith(unit PurchaseUnit) *OrderSnapshot {
	return &OrderSnapshot{
		ID:            "5O190127TN364715T",
		Status:        "CREATED",
		PurchaseUnits: []PurchaseUnit{unit},
	}
}

func baseUnit() PurchaseUnit {
	return PurchaseUnit{
		ReferenceID: "default",
		InvoiceID:   "INV-100",
		Description: "Storefront order",
		Amount:      &Amount{CurrencyCode: "USD", Value: "10.00"},
	}
}

func TestDiffOrderNoChanges(t *testing.T) {
	ops, err := DiffOrder(snapshotWith(baseUnit()), snapshotWith(baseUnit()))
	require.NoError(t, err)
	assert.Empty(t, ops)
}

func TestDiffOrderInvoiceReplace(t *testing.T) {
	desired := baseUnit()
	desired.InvoiceID = "INV-101"

	ops, err := DiffOrder(snapshotWith(baseUnit()), snapshotWith(desired))
	require.NoError(t, err)
	require.Len(t, ops, 1)

	assert.Equal(t, OpReplace, ops[0].Op)
	assert.Equal(t, "/purchase_units/@reference_id=='default'/invoice_id", ops[0].Path)
	assert.Equal(t, "INV-101", ops[0].Value)
}

func TestDiffOrderAddAndRemove(t *testing.T) {
	current := baseUnit()
	current.InvoiceID = ""
	current.CustomID = "OLD"

	desired := baseUnit()
	desired.CustomID = ""

	ops, err := DiffOrder(snapshotWith(current), snapshotWith(desired))
	require.NoError(t, err)
	require.Len(t, ops, 2)

	// Emission follows the policy table order: custom_id before invoice_id.
	assert.Equal(t, OpRemove, ops[0].Op)
	assert.Equal(t, "/purchase_units/@reference_id=='default'/custom_id", ops[0].Path)
	assert.Nil(t, ops[0].Value)

	assert.Equal(t, OpAdd, ops[1].Op)
	assert.Equal(t, "/purchase_units/@reference_id=='default'/invoice_id", ops[1].Path)
	assert.Equal(t, "INV-100", ops[1].Value)
}

func TestDiffOrderAmountReplacedWholesale(t *testing.T) {
	desired := baseUnit()
	desired.Amount = &Amount{CurrencyCode: "USD", Value: "12.50"}

	ops, err := DiffOrder(snapshotWith(baseUnit()), snapshotWith(desired))
	require.NoError(t, err)
	require.Len(t, ops, 1)

	assert.Equal(t, OpReplace, ops[0].Op)
	assert.Equal(t, "/purchase_units/@reference_id=='default'/amount", ops[0].Path)

	value, ok := ops[0].Value.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "12.50", value["value"])
	assert.Equal(t, "USD", value["currency_code"])
}

func TestDiffOrderSoftDescriptorAddRejected(t *testing.T) {
	desired := baseUnit()
	desired.SoftDescriptor = "STORE*ORDER"

	ops, err := DiffOrder(snapshotWith(baseUnit()), snapshotWith(desired))
	assert.Nil(t, ops)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDiffNotAllowed)

	info := ErrorInfoFrom(err)
	assert.Equal(t, ErrNameDiffNotAllowed, info.Name)
}

func TestDiffOrderShippingRemoveRejected(t *testing.T) {
	current := baseUnit()
	current.Shipping = &Shipping{
		Name:    &ShippingName{FullName: "John Doe"},
		Address: &Address{AddressLine1: "1 Main St", CountryCode: "US"},
	}

	_, err := DiffOrder(snapshotWith(current), snapshotWith(baseUnit()))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDiffNotAllowed)
}

func TestDiffOrderShippingNameReplace(t *testing.T) {
	current := baseUnit()
	current.Shipping = &Shipping{Name: &ShippingName{FullName: "John Doe"}}

	desired := baseUnit()
	desired.Shipping = &Shipping{Name: &ShippingName{FullName: "Jane Doe"}}

	ops, err := DiffOrder(snapshotWith(current), snapshotWith(desired))
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, OpReplace, ops[0].Op)
	assert.Equal(t, "/purchase_units/@reference_id=='default'/shipping/name", ops[0].Path)
}

func TestDiffOrderItemsReplace(t *testing.T) {
	current := baseUnit()
	current.Items = []Item{{Name: "Widget", Quantity: "1", UnitAmount: &Money{CurrencyCode: "USD", Value: "10.00"}}}

	desired := baseUnit()
	desired.Items = []Item{{Name: "Widget", Quantity: "2", UnitAmount: &Money{CurrencyCode: "USD", Value: "10.00"}}}

	ops, err := DiffOrder(snapshotWith(current), snapshotWith(desired))
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, OpReplace, ops[0].Op)
	assert.Equal(t, "/purchase_units/@reference_id=='default'/items", ops[0].Path)
}

func TestDiffOrderIgnoresPaymentsAndReferenceID(t *testing.T) {
	current := baseUnit()
	current.Payments = &PaymentCollection{
		Captures: []CaptureDetail{{ID: "2GG279541U471931P", Status: "COMPLETED"}},
	}

	desired := baseUnit()
	desired.ReferenceID = "other"

	ops, err := DiffOrder(snapshotWith(current), snapshotWith(desired))
	require.NoError(t, err)
	assert.Empty(t, ops)
}

func TestDiffOrderUnpolicedFieldRejected(t *testing.T) {
	current := map[string]interface{}{
		"invoice_id": "INV-100",
		"payee":      map[string]interface{}{"email_address": "store@merchant.test"},
	}
	desired := map[string]interface{}{
		"invoice_id": "INV-100",
	}

	ops, err := diffUnitTrees(current, desired)
	assert.Nil(t, ops)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDiffNotAllowed)

	info := ErrorInfoFrom(err)
	assert.Contains(t, info.Message, "parameters cannot be updated")
	assert.Contains(t, info.Message, "payee.email_address")
}

func TestDiffOrderUnpolicedFieldRejectsPermittedOpsToo(t *testing.T) {
	current := map[string]interface{}{
		"invoice_id": "INV-100",
		"payee":      "alternate",
	}
	desired := map[string]interface{}{
		"invoice_id": "INV-101",
		"payee":      "primary",
	}

	// The invoice change alone would be a legal replace; the unpoliced
	// neighbor rejects the whole diff and nothing is emitted.
	ops, err := diffUnitTrees(current, desired)
	assert.Nil(t, ops)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDiffNotAllowed)
	assert.Contains(t, ErrorInfoFrom(err).Message, "payee")
}

func TestDiffOrderMissingPurchaseUnit(t *testing.T) {
	_, err := DiffOrder(&OrderSnapshot{}, snapshotWith(baseUnit()))
	assert.ErrorIs(t, err, ErrDiffNotAllowed)

	_, err = DiffOrder(snapshotWith(baseUnit()), nil)
	assert.ErrorIs(t, err, ErrDiffNotAllowed)
}

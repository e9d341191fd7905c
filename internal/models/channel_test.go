package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func channelWithStates(states ...ChannelOrderState) *Channel {
	return &Channel{OrderStates: states}
}

func TestStatusesToImportPairsPartialStatuses(t *testing.T) {
	channel := channelWithStates(
		ChannelOrderState{Code: "Unshipped", Action: ActionProcessAutomatically},
	)

	assert.Equal(t, []string{"Unshipped", "PartiallyShipped"}, channel.StatusesToImport())
}

func TestStatusesToImportPairsFromEitherSide(t *testing.T) {
	channel := channelWithStates(
		ChannelOrderState{Code: "PartiallyShipped", Action: ActionProcessManually},
	)

	assert.Equal(t, []string{"Unshipped", "PartiallyShipped"}, channel.StatusesToImport())
}

func TestStatusesToImportExcludesDoNotImport(t *testing.T) {
	channel := channelWithStates(
		ChannelOrderState{Code: "Pending", Action: ActionDoNotImport},
		ChannelOrderState{Code: "Canceled", Action: ActionDoNotImport},
		ChannelOrderState{Code: "Shipped", Action: ActionImportAsPast},
	)

	assert.Equal(t, []string{"Shipped"}, channel.StatusesToImport())
}

func TestStatusesToImportKeepsCanonicalOrder(t *testing.T) {
	channel := channelWithStates(
		ChannelOrderState{Code: "Shipped", Action: ActionImportAsPast},
		ChannelOrderState{Code: "Unshipped", Action: ActionProcessAutomatically},
	)

	assert.Equal(t, []string{"Unshipped", "PartiallyShipped", "Shipped"}, channel.StatusesToImport())
}

func TestDefaultActionForStatus(t *testing.T) {
	cases := []struct {
		code   string
		action OrderStateAction
	}{
		{"Unshipped", ActionProcessAutomatically},
		{"PartiallyShipped", ActionProcessManually},
		{"Shipped", ActionImportAsPast},
		{"Pending", ActionDoNotImport},
		{"Canceled", ActionDoNotImport},
		{"InvoiceUnconfirmed", ActionDoNotImport},
		{"Unfulfillable", ActionDoNotImport},
	}
	for _, tc := range cases {
		action, _, _ := DefaultActionForStatus(tc.code)
		assert.Equal(t, tc.action, action, tc.code)
	}
}

func TestActionForStatusPrefersConfiguredState(t *testing.T) {
	channel := channelWithStates(
		ChannelOrderState{Code: "Shipped", Action: ActionProcessManually},
	)

	state := channel.ActionForStatus("Shipped")
	assert.Equal(t, ActionProcessManually, state.Action)
}

func TestActionForStatusFallsBackToDefaults(t *testing.T) {
	channel := channelWithStates()

	state := channel.ActionForStatus("Unshipped")
	assert.Equal(t, ActionProcessAutomatically, state.Action)
	assert.Equal(t, MethodOnShipment, state.InvoiceMethod)
	assert.Equal(t, MethodOnOrder, state.ShipmentMethod)
}

func TestComputedTotalSumsAllLines(t *testing.T) {
	itemID := "68828574383266"
	order := &Order{Lines: []OrderLine{
		{ExternalLineID: &itemID, Quantity: 2, UnitPrice: decimal.RequireFromString("8.50")},
		{Quantity: 1, UnitPrice: decimal.RequireFromString("4.00")},
	}}

	assert.Equal(t, "21", order.ComputedTotal().String())
}

func TestIsShippingMarksLinesWithoutExternalID(t *testing.T) {
	itemID := "68828574383266"
	item := OrderLine{ExternalLineID: &itemID}
	shipping := OrderLine{}

	assert.False(t, item.IsShipping())
	assert.True(t, shipping.IsShipping())
}

func TestIsOpen(t *testing.T) {
	assert.True(t, (&Order{State: OrderProcessing}).IsOpen())
	assert.True(t, (&Order{State: OrderManualReview}).IsOpen())
	assert.False(t, (&Order{State: OrderDraft}).IsOpen())
	assert.False(t, (&Order{State: OrderDone}).IsOpen())
	assert.False(t, (&Order{State: OrderIgnored}).IsOpen())
}

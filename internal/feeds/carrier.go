package feeds

import "amazon-connector-service/internal/models"

// carrierCodes maps internal carrier cost methods to the carrier codes
// the fulfillment feed schema enumerates.
var carrierCodes = map[models.CarrierMethod]string{
	models.CarrierEndicia: "USPS",
	models.CarrierFedex:   "FedEx",
	models.CarrierUPS:     "UPS",
}

// CarrierData resolves the carrier element of a fulfillment message from
// a shipment. Known cost methods become a CarrierCode; an unrecognized
// method falls back to the configured carrier name, and a shipment with
// no carrier at all reports self fulfillment.
func CarrierData(shipment *models.Shipment) FulfillmentData {
	data := FulfillmentData{
		ShippingMethod:        shipment.ServiceName,
		ShipperTrackingNumber: shipment.TrackingNumber,
	}
	if code, ok := carrierCodes[shipment.CarrierMethod]; ok {
		data.CarrierCode = code
		return data
	}
	if shipment.CarrierName != "" {
		data.CarrierName = shipment.CarrierName
		return data
	}
	data.CarrierName = "self"
	return data
}

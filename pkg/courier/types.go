package courier

// Pickup is the result of scheduling a reverse pickup with the aggregator.
type Pickup struct {
	ShipmentID string
	AWBNumber  string
	PickupDate string
}

// Shipment is the result of creating a forward shipment.
type Shipment struct {
	ShipmentID string
	AWBNumber  string
}

// TrackData is a live tracking snapshot for one AWB.
type TrackData struct {
	AWBNumber     string
	CurrentStatus string
	Origin        string
	Destination   string
	ETA           string
	Activities    []TrackActivity
}

type TrackActivity struct {
	Date     string `json:"date"`
	Status   string `json:"activity"`
	Location string `json:"location"`
}

// Destination describes where a forward shipment should be delivered.
type Destination struct {
	Name    string
	Phone   string
	Email   string
	Address string
	City    string
	State   string
	Pincode string
}

// ShipmentItem is one line in an aggregator order payload.
type ShipmentItem struct {
	Name  string  `json:"name"`
	SKU   string  `json:"sku"`
	Units int     `json:"units"`
	Price float64 `json:"selling_price"`
}

type authResponse struct {
	Token string `json:"token"`
}

type returnOrderResponse struct {
	ShipmentID int64  `json:"shipment_id"`
	AWBCode    string `json:"awb_code"`
	PickupDate string `json:"pickup_scheduled_date"`
	Status     string `json:"status"`
}

type forwardOrderResponse struct {
	ShipmentID int64  `json:"shipment_id"`
	AWBCode    string `json:"awb_code"`
	Status     string `json:"status"`
}

type trackResponse struct {
	TrackingData struct {
		ShipmentTrack []struct {
			AWBCode       string `json:"awb_code"`
			CurrentStatus string `json:"current_status"`
			Origin        string `json:"origin"`
			Destination   string `json:"destination"`
			EDD           string `json:"edd"`
		} `json:"shipment_track"`
		ShipmentTrackActivities []TrackActivity `json:"shipment_track_activities"`
	} `json:"tracking_data"`
}

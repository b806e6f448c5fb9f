package models

import "time"

// Driver is the delivery agent assigned to an order.
type Driver struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Phone       string `json:"phone,omitempty"`
	VehicleType string `json:"vehicle_type,omitempty"`
	Rating      *Float `json:"rating,omitempty"`
}

// TrackingInfo is the response of GET /orders/{id}/track.
type TrackingInfo struct {
	OrderStatus           OrderStatus  `json:"order_status"`
	DriverLocation        *Coordinates `json:"driver_location,omitempty"`
	Driver                *Driver      `json:"driver,omitempty"`
	DeliveryCoords        *Coordinates `json:"delivery_coords,omitempty"`
	EstimatedDeliveryTime *time.Time   `json:"estimated_delivery_time,omitempty"`
}

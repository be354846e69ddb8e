package model

type EndpointStatus string

const (
	EndpointStatusActive      EndpointStatus = "ACTIVE"
	EndpointStatusNonActive   EndpointStatus = "NON_ACTIVE"
	EndpointStatusMaintenance EndpointStatus = "MAINTENANCE"
)

type Endpoint struct {
	ID          int            `json:"id" gorm:"primaryKey"`
	Slug        string         `json:"slug" gorm:"unique;not null"`
	Name        string         `json:"name" gorm:"not null"`
	Description string         `json:"description,omitempty"`
	Status      EndpointStatus `json:"status" gorm:"default:ACTIVE"`
}

func (s EndpointStatus) Valid() bool {
	switch s {
	case EndpointStatusActive, EndpointStatusNonActive, EndpointStatusMaintenance:
		return true
	}
	return false
}

type EndpointStatusUpdate struct {
	Slug   string         `json:"slug"`
	Status EndpointStatus `json:"status"`
}

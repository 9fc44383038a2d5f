package domain

import "time"

const (
	SensorIcon        = "mdi:trash-can"
	SensorDeviceClass = "timestamp"
)

// PickupSensor is the externally visible state of one subscription.
type PickupSensor struct {
	UniqueID      string
	AccountID     AccountID
	ServiceID     ServiceID
	Name          string
	Icon          string
	DeviceClass   string
	Value         *time.Time
	ResolvedAt    time.Time
	LastAttemptAt time.Time
	LastError     string
}

func NewPickupSensor(sub ServiceSubscription) PickupSensor {
	return PickupSensor{
		UniqueID:    sub.UniqueID(),
		AccountID:   sub.AccountID,
		ServiceID:   sub.ServiceID,
		Name:        sub.DisplayName,
		Icon:        SensorIcon,
		DeviceClass: SensorDeviceClass,
	}
}

// Available is false until a value has been resolved at least once. A failed
// cycle keeps the previous value.
func (s PickupSensor) Available() bool {
	return s.Value != nil
}

// Stale reports whether the latest attempt failed after an earlier success.
func (s PickupSensor) Stale() bool {
	return s.Value != nil && s.LastError != ""
}

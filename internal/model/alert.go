package model

import "time"

// AlertCategory is the fixed enumeration of alert types.
type AlertCategory string

const (
	AlertUserConnected          AlertCategory = "user-connected"
	AlertUserDisconnected       AlertCategory = "user-disconnected"
	AlertUserReconnected        AlertCategory = "user-reconnected"
	AlertUserTimeExpired        AlertCategory = "time-expired"
	AlertWirelessConnected      AlertCategory = "wireless-client-connected"
	AlertWirelessDisconnected   AlertCategory = "wireless-client-disconnected"
	AlertInterfaceUp            AlertCategory = "interface-up"
	AlertInterfaceDown          AlertCategory = "interface-down"
	AlertSystemWarning          AlertCategory = "system-warning"
	AlertSystemError            AlertCategory = "system-error"
)

// AlertPriority levels, lowest to highest.
type AlertPriority string

const (
	PriorityMedium   AlertPriority = "medium"
	PriorityHigh     AlertPriority = "high"
	PriorityCritical AlertPriority = "critical"
)

// AlertProfile is the static configuration for one alert category.
type AlertProfile struct {
	Name         string
	Priority     AlertPriority
	EmailSubject string
}

var alertProfiles = map[AlertCategory]AlertProfile{
	AlertUserConnected:        {Name: "User Connected", Priority: PriorityHigh, EmailSubject: "New User Connected"},
	AlertUserDisconnected:     {Name: "User Disconnected", Priority: PriorityMedium, EmailSubject: "User Disconnected"},
	AlertUserReconnected:      {Name: "User Reconnected", Priority: PriorityMedium, EmailSubject: "User Reconnected"},
	AlertUserTimeExpired:      {Name: "User Time Expired", Priority: PriorityHigh, EmailSubject: "User Time Expired"},
	AlertWirelessConnected:    {Name: "Wireless Client Connected", Priority: PriorityMedium, EmailSubject: "Wireless Client Connected"},
	AlertWirelessDisconnected: {Name: "Wireless Client Disconnected", Priority: PriorityMedium, EmailSubject: "Wireless Client Disconnected"},
	AlertInterfaceUp:          {Name: "Interface Up", Priority: PriorityMedium, EmailSubject: "Interface Up"},
	AlertInterfaceDown:        {Name: "Interface Down", Priority: PriorityCritical, EmailSubject: "Interface Down"},
	AlertSystemWarning:        {Name: "System Warning", Priority: PriorityHigh, EmailSubject: "System Warning"},
	AlertSystemError:          {Name: "System Error", Priority: PriorityCritical, EmailSubject: "System Error"},
}

// ProfileFor returns the static profile for a category. Unknown categories
// fall back to a medium-priority profile named after the category.
func ProfileFor(category AlertCategory) AlertProfile {
	if profile, ok := alertProfiles[category]; ok {
		return profile
	}
	return AlertProfile{Name: string(category), Priority: PriorityMedium, EmailSubject: string(category)}
}

// Alert is one entry of the bounded notification history.
type Alert struct {
	ID        string            `json:"id"`
	Category  AlertCategory     `json:"category"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Details   map[string]string `json:"details,omitempty"`
	Priority  AlertPriority     `json:"priority"`
	Timestamp time.Time         `json:"timestamp"`
	Read      bool              `json:"read"`
}

// config/security_config.go
package config

type SecurityLevel int

const (
	SecurityPublic   SecurityLevel = iota // No authentication
	SecurityOptional                      // Access token honoured when present
	SecurityAccess                        // Access token required
	SecurityAdmin                         // Access token with admin role required
)

func (l SecurityLevel) String() string {
	switch l {
	case SecurityPublic:
		return "public"
	case SecurityOptional:
		return "optional"
	case SecurityAccess:
		return "access"
	case SecurityAdmin:
		return "admin"
	}
	return "unknown"
}

// EndpointSecurityConfig maps route names to their required security level
var EndpointSecurityConfig = map[string]SecurityLevel{
	// Auth - Public
	"Signup":  SecurityPublic,
	"Login":   SecurityPublic,
	"Refresh": SecurityPublic,

	// Downloads of locally stored reports carry an unguessable key
	"Download": SecurityPublic,

	// Requests - anonymous filing allowed
	"CreateRequest": SecurityOptional,

	// Donors - Access Protected
	"ListDonors":       SecurityAccess,
	"ListEligible":     SecurityAccess,
	"NearbyDonors":     SecurityAccess,
	"RegisterDonor":    SecurityAccess,
	"GetDonor":         SecurityAccess,
	"DonorEligibility": SecurityAccess,
	"UpdateDonor":      SecurityAccess,

	// Requests - Access Protected
	"IncomingRequests": SecurityAccess,
	"MyRequests":       SecurityAccess,
	"ApproveRequest":   SecurityAccess,
	"RejectRequest":    SecurityAccess,
	"CompleteRequest":  SecurityAccess,
	"AssignRequest":    SecurityAccess,

	// Notifications - Access Protected
	"ListNotifications": SecurityAccess,
	"MarkNotification":  SecurityAccess,

	// Admin
	"DeleteDonor":    SecurityAdmin,
	"BulkAddDonors":  SecurityAdmin,
	"ListDonations":  SecurityAdmin,
	"LogDonation":    SecurityAdmin,
	"ResetDonations": SecurityAdmin,
	"Dashboard":      SecurityAdmin,
	"ExportDonors":   SecurityAdmin,
}

// GetSecurityLevel returns the security level for a given route name
func GetSecurityLevel(route string) SecurityLevel {
	if level, exists := EndpointSecurityConfig[route]; exists {
		return level
	}
	// Default to highest security for unknown endpoints
	return SecurityAdmin
}

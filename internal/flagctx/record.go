package flagctx

// Context kinds and fixed keys of the multi-kind evaluation record.
const (
	KindUser     = "user"
	KindLocation = "location"
	KindDevice   = "device"

	LocationKey = "location-context"
	DeviceKey   = "device-context"

	// AnonymousKey is the user key used when the request carries no user ID.
	AnonymousKey = "anonymous"
	// UnknownCountry is used when the runtime supplies no geolocation.
	UnknownCountry = "unknown"
	// UnknownUserAgent stands in for a missing User-Agent header.
	UnknownUserAgent = "unknown"
)

// Record is the evaluation context for a single request. It is built fresh
// for each request and is not modified afterwards.
type Record struct {
	User     User
	Location Location
	Device   Device
}

// User identifies the requester.
type User struct {
	Key       string
	Anonymous bool
}

// Location carries the client's country as reported by the runtime.
type Location struct {
	Key     string
	Country string
}

// Device describes the client device. Type, OS, Browser and Bot come from a
// full User-Agent parse; Custom.IsMobile is the substring classification.
type Device struct {
	Key     string
	Type    string
	OS      string
	Browser string
	Bot     bool
	Custom  DeviceCustom
}

// DeviceCustom holds the device's custom attributes.
type DeviceCustom struct {
	IsMobile bool
}

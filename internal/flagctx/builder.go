// Package flagctx derives the flag evaluation context from an inbound edge request.
package flagctx

import (
	"fmt"
	"regexp"

	"github.com/avct/uasurfer"

	"github.com/patrickwarner/edgeads/internal/edge"
)

// UserIDHeader carries the caller's stable user identifier.
const UserIDHeader = "X-User-ID"

// mobilePattern is matched case-sensitively against the User-Agent.
var mobilePattern = regexp.MustCompile(`Mobile|Android|iPhone|iPad`)

// Build derives a Record from the request headers and the runtime-supplied
// location. Every missing input has a default, so Build cannot fail.
func Build(req edge.Request) Record {
	userKey := firstHeader(req, UserIDHeader)
	anonymous := userKey == ""
	if anonymous {
		userKey = AnonymousKey
	}

	country := UnknownCountry
	if loc := req.UserLocation(); loc != nil && loc.Country != "" {
		country = loc.Country
	}

	userAgent := firstHeader(req, "User-Agent")
	if userAgent == "" {
		userAgent = UnknownUserAgent
	}

	return Record{
		User: User{
			Key:       userKey,
			Anonymous: anonymous,
		},
		Location: Location{
			Key:     LocationKey,
			Country: country,
		},
		Device: ResolveDevice(userAgent),
	}
}

// IsMobile reports whether the User-Agent contains a mobile indicator.
func IsMobile(userAgent string) bool {
	return mobilePattern.MatchString(userAgent)
}

// ResolveDevice parses a raw User-Agent string into the device part of the record.
func ResolveDevice(userAgent string) Device {
	u := uasurfer.Parse(userAgent)

	var deviceType string
	switch u.DeviceType {
	case uasurfer.DeviceComputer:
		deviceType = "desktop"
	case uasurfer.DevicePhone:
		deviceType = "mobile"
	case uasurfer.DeviceTablet:
		deviceType = "tablet"
	default:
		deviceType = "other"
	}

	return Device{
		Key:     DeviceKey,
		Type:    deviceType,
		OS:      fmt.Sprintf("%s %s", u.OS.Platform.String(), u.OS.Name.String()),
		Browser: u.Browser.Name.String(),
		Bot:     u.IsBot(),
		Custom: DeviceCustom{
			IsMobile: IsMobile(userAgent),
		},
	}
}

func firstHeader(req edge.Request, name string) string {
	if vs := req.Header(name); len(vs) > 0 {
		return vs[0]
	}
	return ""
}

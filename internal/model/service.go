package model

import (
	"encoding/json"
	"fmt"
)

// Service identifies one of the two fingerprint matching services
type Service int

const (
	Primary   Service = iota // Accepts a bare JSON array of fingerprints
	Secondary                // Accepts {"fingerprints": [...]}
)

// Services lists every service in reporting order
var Services = []Service{Primary, Secondary}

func (s Service) String() string {
	switch s {
	case Primary:
		return "primary"
	case Secondary:
		return "secondary"
	default:
		return fmt.Sprintf("service(%d)", int(s))
	}
}

type fingerprintRequest struct {
	Fingerprints []Fingerprint `json:"fingerprints"`
}

// EncodeBody serializes fingerprints in the request shape the service expects
func (s Service) EncodeBody(fingerprints []Fingerprint) ([]byte, error) {
	if fingerprints == nil {
		fingerprints = []Fingerprint{}
	}

	switch s {
	case Primary:
		return json.Marshal(fingerprints)
	case Secondary:
		return json.Marshal(fingerprintRequest{Fingerprints: fingerprints})
	default:
		return nil, fmt.Errorf("unknown service: %d", int(s))
	}
}

// Endpoints binds each service to its fingerprint URL
type Endpoints struct {
	Primary   string
	Secondary string
}

// URL returns the endpoint for the given service
func (e Endpoints) URL(s Service) string {
	switch s {
	case Primary:
		return e.Primary
	case Secondary:
		return e.Secondary
	default:
		return ""
	}
}

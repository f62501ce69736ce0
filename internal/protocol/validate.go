package protocol

import (
	"fmt"
	"regexp"
)

// Compiled regex patterns matching the envelope format definitions.
var (
	uuidV4Pattern   = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)
	servicePattern  = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
	instancePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)
	versionPattern  = regexp.MustCompile(`^[0-9]+\.[0-9]+\.[0-9]+$`)
)

// validTypes is a set for fast type lookup.
var validTypes = func() map[string]bool {
	m := make(map[string]bool, len(ValidMessageTypes))
	for _, t := range ValidMessageTypes {
		m[t] = true
	}
	return m
}()

// Validate checks a Message against the envelope format rules. All plant
// message types are one-way telemetry, so unlike the request/response
// envelopes this is adapted from, correlation_id and reply_to are never
// required here.
func Validate(msg *Message) error {
	env := msg.Envelope

	if !uuidV4Pattern.MatchString(env.ID) {
		return fmt.Errorf("invalid id: must be UUIDv4 format, got %q", env.ID)
	}

	if env.Timestamp < 0 {
		return fmt.Errorf("invalid timestamp: must be >= 0, got %d", env.Timestamp)
	}

	if err := validateSource(env.Source); err != nil {
		return err
	}

	if env.SchemaVersion != SchemaVersion {
		return fmt.Errorf("invalid schema_version: must be %q, got %q", SchemaVersion, env.SchemaVersion)
	}

	if !validTypes[env.Type] {
		return fmt.Errorf("invalid type: %q is not a valid message type", env.Type)
	}

	if env.CorrelationID != "" && !uuidV4Pattern.MatchString(env.CorrelationID) {
		return fmt.Errorf("invalid correlation_id: must be UUIDv4 format, got %q", env.CorrelationID)
	}

	return nil
}

func validateSource(src Source) error {
	if src.Service == "" || len(src.Service) > 64 || !servicePattern.MatchString(src.Service) {
		return fmt.Errorf("invalid source.service: must match pattern %q (1-64 chars), got %q", servicePattern.String(), src.Service)
	}
	if src.Instance == "" || len(src.Instance) > 64 || !instancePattern.MatchString(src.Instance) {
		return fmt.Errorf("invalid source.instance: must match pattern %q (1-64 chars), got %q", instancePattern.String(), src.Instance)
	}
	if !versionPattern.MatchString(src.Version) {
		return fmt.Errorf("invalid source.version: must be semver format, got %q", src.Version)
	}
	return nil
}

package enums

import "fmt"

// AuditAggregateType names the entity an audit event describes.
type AuditAggregateType string

const (
	AggregatePerson      AuditAggregateType = "person"
	AggregateSector      AuditAggregateType = "sector"
	AggregateReservation AuditAggregateType = "reservation"
)

var validAuditAggregates = []AuditAggregateType{
	AggregatePerson,
	AggregateSector,
	AggregateReservation,
}

// IsValid reports whether the value is a known aggregate type.
func (a AuditAggregateType) IsValid() bool {
	for _, candidate := range validAuditAggregates {
		if candidate == a {
			return true
		}
	}
	return false
}

// AuditEventType is the dotted name of a recorded change.
type AuditEventType string

const (
	EventAccountRegistered    AuditEventType = "account.registered"
	EventAccountAuthenticated AuditEventType = "account.authenticated"
	EventAccountApproved      AuditEventType = "account.approved"
	EventAccountDenied        AuditEventType = "account.denied"
	EventProfileUpdated       AuditEventType = "account.profile_updated"
	EventSectorCreated        AuditEventType = "sector.created"
	EventSectorRenamed        AuditEventType = "sector.renamed"
	EventSectorDeleted        AuditEventType = "sector.deleted"
	EventReservationsReplaced AuditEventType = "reservation.replaced"
	EventReservationToggled   AuditEventType = "reservation.toggled"
	EventReservationCanceled  AuditEventType = "reservation.canceled"
	EventAttendanceMarked     AuditEventType = "reservation.attendance_marked"
	EventSpecialBooked        AuditEventType = "reservation.special_booked"
	EventOrphansSwept         AuditEventType = "reservation.orphans_swept"
)

var validAuditEvents = []AuditEventType{
	EventAccountRegistered,
	EventAccountAuthenticated,
	EventAccountApproved,
	EventAccountDenied,
	EventProfileUpdated,
	EventSectorCreated,
	EventSectorRenamed,
	EventSectorDeleted,
	EventReservationsReplaced,
	EventReservationToggled,
	EventReservationCanceled,
	EventAttendanceMarked,
	EventSpecialBooked,
	EventOrphansSwept,
}

// IsValid reports whether the value is a known audit event type.
func (e AuditEventType) IsValid() bool {
	for _, candidate := range validAuditEvents {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseAuditEventType converts raw input into an AuditEventType.
func ParseAuditEventType(value string) (AuditEventType, error) {
	for _, candidate := range validAuditEvents {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid audit event type %q", value)
}

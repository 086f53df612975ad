package models

import "time"

type VisitStatus string

const (
	VisitStatusActive     VisitStatus = "ACTIVE"
	VisitStatusCheckedOut VisitStatus = "CHECKED_OUT"
)

// DeriveStatus is the only place a visit's status is computed. Status is
// never persisted.
func DeriveStatus(checkOutAt *time.Time) VisitStatus {
	if checkOutAt == nil {
		return VisitStatusActive
	}
	return VisitStatusCheckedOut
}

type Visit struct {
	ID         int64      `json:"id" db:"id"`
	VisitorID  int64      `json:"visitor_id" db:"visitor_id"`
	HostID     int64      `json:"host_id" db:"host_id"`
	Purpose    string     `json:"purpose" db:"purpose"`
	QRToken    string     `json:"qr_token" db:"qr_token"`
	CheckInAt  time.Time  `json:"check_in_at" db:"check_in_at"`
	CheckOutAt *time.Time `json:"check_out_at" db:"check_out_at"`
}

func (v Visit) Status() VisitStatus {
	return DeriveStatus(v.CheckOutAt)
}

// VisitSummary is a row of the security dashboard's active visitor list.
type VisitSummary struct {
	ID        int64     `json:"id"`
	FullName  string    `json:"full_name"`
	Company   *string   `json:"company"`
	Purpose   string    `json:"purpose"`
	CheckInAt time.Time `json:"check_in_at"`
	QRToken   string    `json:"qr_token"`
}

// VisitDetail is the fully joined view returned when a token is verified.
type VisitDetail struct {
	VisitID     int64       `json:"visit_id"`
	VisitorName string      `json:"visitor_name"`
	Company     *string     `json:"company"`
	Phone       *string     `json:"phone"`
	HostName    string      `json:"host_name"`
	HostEmail   string      `json:"host_email"`
	Purpose     string      `json:"purpose"`
	CheckInAt   time.Time   `json:"check_in_at"`
	CheckOutAt  *time.Time  `json:"check_out_at"`
	QRToken     string      `json:"qr_token"`
	Status      VisitStatus `json:"status"`
}

// VisitRecord is one line of the visit log used by history and exports.
type VisitRecord struct {
	VisitID     int64       `json:"id"`
	VisitorName string      `json:"visitor_name"`
	Company     *string     `json:"company"`
	Phone       *string     `json:"phone"`
	HostName    string      `json:"host_name"`
	HostEmail   string      `json:"host_email"`
	Purpose     string      `json:"purpose"`
	CheckInAt   time.Time   `json:"check_in_at"`
	CheckOutAt  *time.Time  `json:"check_out_at"`
	QRToken     string      `json:"qr_token"`
	Status      VisitStatus `json:"status"`
}

// CheckInResult is returned to the kiosk after a successful check-in.
type CheckInResult struct {
	VisitID int64  `json:"visit_id"`
	Token   string `json:"qr_token"`
}

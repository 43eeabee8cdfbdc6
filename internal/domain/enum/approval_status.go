package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// ApprovalStatus represents whether a Z-Report variance still needs sign-off
type ApprovalStatus int

const (
	ApprovalNone     ApprovalStatus = 0
	ApprovalPending  ApprovalStatus = 1
	ApprovalApproved ApprovalStatus = 2
)

func (s ApprovalStatus) String() string {
	names := [...]string{"None", "PendingApproval", "Approved"}
	if int(s) < 0 || int(s) >= len(names) {
		return "None"
	}
	return names[s]
}

func (s ApprovalStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *ApprovalStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = ApprovalStatus(i)
		return nil
	}
	switch str {
	case "None":
		*s = ApprovalNone
	case "PendingApproval":
		*s = ApprovalPending
	case "Approved":
		*s = ApprovalApproved
	}
	return nil
}

func (s ApprovalStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *ApprovalStatus) Scan(value interface{}) error {
	if value == nil {
		*s = ApprovalNone
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = ApprovalStatus(v)
	case int:
		*s = ApprovalStatus(v)
	}
	return nil
}

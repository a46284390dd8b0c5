package ids

import (
	"database/sql/driver"
	"fmt"

	"github.com/oklog/ulid/v2"
)

// ID is the opaque identifier used by every record. It is a ULID rendered
// as its 26 character Crockford base32 string on the wire and in storage.
type ID struct {
	ulid ulid.ULID
}

func New() ID {
	return ID{ulid: ulid.Make()}
}

func Parse(s string) (ID, error) {
	u, err := ulid.ParseStrict(s)
	if err != nil {
		return ID{}, fmt.Errorf("invalid id %q: %w", s, err)
	}
	return ID{ulid: u}, nil
}

func MustParse(s string) ID {
	id, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}

func (id ID) String() string {
	return id.ulid.String()
}

func (id ID) IsZero() bool {
	return id.ulid == (ulid.ULID{})
}

// Equal is the single place ids are compared.
func (id ID) Equal(other ID) bool {
	return id.ulid.Compare(other.ulid) == 0
}

func (id ID) Compare(other ID) int {
	return id.ulid.Compare(other.ulid)
}

// Contains reports whether id is present in list.
func Contains(list []ID, id ID) bool {
	for _, candidate := range list {
		if candidate.Equal(id) {
			return true
		}
	}
	return false
}

func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *ID) UnmarshalText(data []byte) error {
	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Value stores the id as text so the column is readable in every dialect.
func (id ID) Value() (driver.Value, error) {
	return id.String(), nil
}

func (id *ID) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		return id.UnmarshalText([]byte(v))
	case []byte:
		return id.UnmarshalText(v)
	case nil:
		*id = ID{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into ids.ID", value)
	}
}

package domain

import (
	"bytes"
	"encoding/json"
)

type Status string

const (
	StatusNew        Status = "new"
	StatusProcessing Status = "processing" // claimed, an agent is working on it
	StatusInvited    Status = "invited"
	StatusPending    Status = "pending"
)

// Terminal reports whether the status is set by the outreach agent after it
// finished with the lead. Unknown statuses count as terminal.
func (s Status) Terminal() bool {
	return s != StatusNew && s != StatusProcessing
}

// Lead is one prospect. Fields other than name, profile_url and status are
// kept as raw JSON and written back untouched.
type Lead struct {
	Name       string
	ProfileURL string
	Status     Status
	Extra      map[string]json.RawMessage

	// how the known fields looked in the source document, so an unchanged
	// lead is written back byte for byte
	name, profileURL, status fieldState
	// the whole entry was JSON null
	null bool
}

type fieldState uint8

const (
	fieldAbsent fieldState = iota
	fieldNull
	fieldSet
)

var jsonNull = []byte("null")

func isNull(raw []byte) bool { return bytes.Equal(bytes.TrimSpace(raw), jsonNull) }

func (l Lead) MarshalJSON() ([]byte, error) {
	if l.null && l.Name == "" && l.ProfileURL == "" && l.Status == "" && len(l.Extra) == 0 {
		return jsonNull, nil
	}
	m := make(map[string]json.RawMessage, len(l.Extra)+3)
	for k, v := range l.Extra {
		m[k] = v
	}
	// a non-empty value always wins; an empty one keeps its source shape
	put := func(k, v string, st fieldState) error {
		switch {
		case v != "" || st == fieldSet:
			b, err := json.Marshal(v)
			if err != nil {
				return err
			}
			m[k] = b
		case st == fieldNull:
			m[k] = jsonNull
		}
		return nil
	}
	if err := put("name", l.Name, l.name); err != nil {
		return nil, err
	}
	if err := put("profile_url", l.ProfileURL, l.profileURL); err != nil {
		return nil, err
	}
	if err := put("status", string(l.Status), l.status); err != nil {
		return nil, err
	}
	return json.Marshal(m)
}

func (l *Lead) UnmarshalJSON(b []byte) error {
	if isNull(b) {
		*l = Lead{null: true}
		return nil
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	*l = Lead{}
	take := func(k string, dst any) (fieldState, error) {
		raw, ok := m[k]
		if !ok {
			return fieldAbsent, nil
		}
		delete(m, k)
		if isNull(raw) {
			return fieldNull, nil
		}
		return fieldSet, json.Unmarshal(raw, dst)
	}
	var err error
	if l.name, err = take("name", &l.Name); err != nil {
		return err
	}
	if l.profileURL, err = take("profile_url", &l.ProfileURL); err != nil {
		return err
	}
	if l.status, err = take("status", &l.Status); err != nil {
		return err
	}
	if len(m) > 0 {
		l.Extra = m
	}
	return nil
}

// Key identifies a lead across lists: the profile URL when known, else the name.
func (l Lead) Key() string {
	if l.ProfileURL != "" {
		return l.ProfileURL
	}
	return l.Name
}

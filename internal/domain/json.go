package domain

import "encoding/json"

// The value objects marshal as their raw representation so API payloads and
// stored documents see plain strings and numbers, not wrapper structs.

func (k ObjectKey) MarshalJSON() ([]byte, error) { return json.Marshal(k.value) }

func (k *ObjectKey) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw == "" {
		*k = ObjectKey{}
		return nil
	}
	key, err := NewObjectKey(raw)
	if err != nil {
		return err
	}
	*k = key
	return nil
}

func (u UploadID) MarshalJSON() ([]byte, error) { return json.Marshal(u.value) }

func (u *UploadID) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw == "" {
		*u = UploadID{}
		return nil
	}
	id, err := NewUploadID(raw)
	if err != nil {
		return err
	}
	*u = id
	return nil
}

func (e ETag) MarshalJSON() ([]byte, error) { return json.Marshal(e.value) }

func (e *ETag) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw == "" {
		*e = ETag{}
		return nil
	}
	tag, err := NewETag(raw)
	if err != nil {
		return err
	}
	*e = tag
	return nil
}

func (s FileSize) MarshalJSON() ([]byte, error) { return json.Marshal(s.bytes) }

func (s *FileSize) UnmarshalJSON(b []byte) error {
	var n int64
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	size, err := NewFileSize(n)
	if err != nil {
		return err
	}
	*s = size
	return nil
}

package services

import "encoding/json"

func unmarshalDoc(doc []byte, v any) error {
	return json.Unmarshal(doc, v)
}

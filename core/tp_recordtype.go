package core

import "provenance-chain/internal/perr"

// validPropertySchema checks the shape rules CREATE_RECORD_TYPE applies to
// each property schema, recursing into STRUCT sub-schemas: nonempty name, a recognised data type, ENUMs
// carrying at least one option, STRUCTs carrying a nested schema.
func validPropertySchema(s PropertySchema) error {
	if s.Name == "" {
		return perr.Validationf("property schema: name must not be empty")
	}
	switch s.DataType {
	case DataTypeBytes, DataTypeBoolean, DataTypeNumber, DataTypeString, DataTypeLocation:
		return nil
	case DataTypeEnum:
		if len(s.EnumOptions) == 0 {
			return perr.Validationf("property schema %q: ENUM requires at least one option", s.Name)
		}
		return nil
	case DataTypeStruct:
		if len(s.StructSchema) == 0 {
			return perr.Validationf("property schema %q: STRUCT requires a nested schema", s.Name)
		}
		for _, sub := range s.StructSchema {
			if err := validPropertySchema(sub); err != nil {
				return err
			}
		}
		return nil
	default:
		return perr.Validationf("property schema %q: unknown data type %d", s.Name, s.DataType)
	}
}

// applyCreateRecordType implements CREATE_RECORD_TYPE (spec.md §4.3).
func applyCreateRecordType(state StateRW, signer string, body CreateRecordTypeBody) error {
	known, err := agentExists(state, signer)
	if err != nil {
		return err
	}
	if !known {
		return perr.Validationf("CREATE_RECORD_TYPE: signer %s is not a known agent", signer)
	}
	if body.Name == "" {
		return perr.Validationf("CREATE_RECORD_TYPE: name must not be empty")
	}
	if len(body.Properties) == 0 {
		return perr.Validationf("CREATE_RECORD_TYPE: properties must not be empty")
	}
	for _, p := range body.Properties {
		if err := validPropertySchema(p); err != nil {
			return err
		}
	}

	address := RecordTypeAddress(body.Name)
	types, err := loadContainer(state, address, DecodeRecordType)
	if err != nil {
		return err
	}
	if _, ok := Find(types, body.Name); ok {
		return perr.Validationf("CREATE_RECORD_TYPE: record type %q already exists", body.Name)
	}
	types = Upsert(types, RecordType{Name: body.Name, Properties: body.Properties})
	return saveContainer(state, address, types)
}

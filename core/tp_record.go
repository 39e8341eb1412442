package core

import "provenance-chain/internal/perr"

// materializeProperties snapshots a RecordType's PropertySchema list onto a
// new Record's initial Property set, pairing each schema entry with the
// caller-supplied initial value (if any). The Record's property list is
// fixed from this point on — spec.md invariant 5 — so nothing here ever
// consults the RecordType again once the Record exists.
func materializeProperties(schema []PropertySchema, supplied []PropertyValue) (map[string]PropertyValue, error) {
	bySchemaName := make(map[string]PropertySchema, len(schema))
	for _, s := range schema {
		bySchemaName[s.Name] = s
	}
	suppliedByName := make(map[string]PropertyValue, len(supplied))
	for _, v := range supplied {
		suppliedByName[v.Name] = v
	}
	for _, s := range schema {
		if s.Required {
			if _, ok := suppliedByName[s.Name]; !ok {
				return nil, perr.Validationf("CREATE_RECORD: missing required property %q", s.Name)
			}
		}
	}
	for name, v := range suppliedByName {
		s, ok := bySchemaName[name]
		if !ok {
			return nil, perr.Validationf("CREATE_RECORD: property %q is not part of the record type", name)
		}
		if err := validateValueAgainstSchema(s, v); err != nil {
			return nil, err
		}
	}
	return suppliedByName, nil
}

// applyCreateRecord implements CREATE_RECORD (spec.md §4.3).
func applyCreateRecord(state StateRW, signer string, timestamp int64, body CreateRecordBody) error {
	known, err := agentExists(state, signer)
	if err != nil {
		return err
	}
	if !known {
		return perr.Validationf("CREATE_RECORD: signer %s is not a known agent", signer)
	}
	if body.RecordID == "" {
		return perr.Validationf("CREATE_RECORD: recordId must not be empty")
	}

	recordAddr := RecordAddress(body.RecordID)
	records, err := loadContainer(state, recordAddr, DecodeRecord)
	if err != nil {
		return err
	}
	if _, ok := Find(records, body.RecordID); ok {
		return perr.Validationf("CREATE_RECORD: record %q already exists", body.RecordID)
	}

	typeAddr := RecordTypeAddress(body.RecordType)
	types, err := loadContainer(state, typeAddr, DecodeRecordType)
	if err != nil {
		return err
	}
	recordType, ok := Find(types, body.RecordType)
	if !ok {
		return perr.Validationf("CREATE_RECORD: record type %q does not exist", body.RecordType)
	}

	initialValues, err := materializeProperties(recordType.Properties, body.Properties)
	if err != nil {
		return err
	}

	records = Upsert(records, Record{
		RecordID:   body.RecordID,
		RecordType: body.RecordType,
		Owner:      signer,
		Custodian:  signer,
		Final:      false,
	})
	if err := saveContainer(state, recordAddr, records); err != nil {
		return err
	}

	for _, schema := range recordType.Properties {
		propAddr := PropertyAddress(body.RecordID, schema.Name)
		props, err := loadContainer(state, propAddr, DecodeProperty)
		if err != nil {
			return err
		}
		props = Upsert(props, Property{
			Name:           schema.Name,
			RecordID:       body.RecordID,
			RecordType:     body.RecordType,
			DataType:       schema.DataType,
			CurrentPage:    1,
			Reporters:      []Reporter{{PublicKey: signer, Authorized: true, Index: 0}},
			Fixed:          schema.Fixed,
			NumberExponent: schema.NumberExponent,
			EnumOptions:    schema.EnumOptions,
			StructSchema:   schema.StructSchema,
			Unit:           schema.Unit,
		})
		if err := saveContainer(state, propAddr, props); err != nil {
			return err
		}

		pageAddr := PropertyPageAddress(body.RecordID, schema.Name, 1)
		var reports []PropertyValueReport
		if v, ok := initialValues[schema.Name]; ok {
			reports = append(reports, PropertyValueReport{ReporterIndex: 0, Timestamp: timestamp, Value: v})
		}
		page := PropertyPage{Name: schema.Name, RecordID: body.RecordID, PageNum: 1, Reports: reports}
		if err := state.SetState(pageAddr, EncodeContainer([]PropertyPage{page})); err != nil {
			return err
		}
	}
	return nil
}

package core

import "provenance-chain/internal/perr"

func reporterIndexOf(reporters []Reporter, publicKey string) (int, bool) {
	for _, r := range reporters {
		if r.PublicKey == publicKey {
			return int(r.Index), r.Authorized
		}
	}
	return 0, false
}

// applyUpdateProperties implements UPDATE_PROPERTIES (spec.md §4.3).
func applyUpdateProperties(state StateRW, signer string, timestamp int64, body UpdatePropertiesBody) error {
	known, err := agentExists(state, signer)
	if err != nil {
		return err
	}
	if !known {
		return perr.Validationf("UPDATE_PROPERTIES: signer %s is not a known agent", signer)
	}
	if body.RecordID == "" {
		return perr.Validationf("UPDATE_PROPERTIES: recordId must not be empty")
	}

	records, err := loadContainer(state, RecordAddress(body.RecordID), DecodeRecord)
	if err != nil {
		return err
	}
	record, ok := Find(records, body.RecordID)
	if !ok {
		return perr.Validationf("UPDATE_PROPERTIES: record %q does not exist", body.RecordID)
	}
	if record.Final {
		return perr.Validationf("UPDATE_PROPERTIES: record %q is final", body.RecordID)
	}
	if len(body.Updates) == 0 {
		return perr.Validationf("UPDATE_PROPERTIES: updates must not be empty")
	}

	for _, update := range body.Updates {
		propAddr := PropertyAddress(body.RecordID, update.Name)
		props, err := loadContainer(state, propAddr, DecodeProperty)
		if err != nil {
			return err
		}
		property, ok := Find(props, update.Name)
		if !ok {
			return perr.Validationf("UPDATE_PROPERTIES: property %q does not exist on record %q", update.Name, body.RecordID)
		}
		index, authorized := reporterIndexOf(property.Reporters, signer)
		if !authorized {
			return perr.Validationf("UPDATE_PROPERTIES: signer %s is not an authorized reporter for %q", signer, update.Name)
		}
		schema := PropertySchema{
			Name:           property.Name,
			DataType:       property.DataType,
			NumberExponent: property.NumberExponent,
			EnumOptions:    property.EnumOptions,
			StructSchema:   property.StructSchema,
		}
		if err := validateValueAgainstSchema(schema, update); err != nil {
			return err
		}

		if err := appendPropertyReport(state, &property, PropertyValueReport{
			ReporterIndex: int32(index),
			Timestamp:     timestamp,
			Value:         update,
		}); err != nil {
			return err
		}
		props = Upsert(props, property)
		if err := saveContainer(state, propAddr, props); err != nil {
			return err
		}
	}
	return nil
}

// applyRevokeReporter implements REVOKE_REPORTER (spec.md §4.3).
func applyRevokeReporter(state StateRW, signer string, body RevokeReporterBody) error {
	if body.RecordID == "" || body.PropertyName == "" || body.ReporterID == "" {
		return perr.Validationf("REVOKE_REPORTER: recordId, propertyName and reporterId are required")
	}
	records, err := loadContainer(state, RecordAddress(body.RecordID), DecodeRecord)
	if err != nil {
		return err
	}
	record, ok := Find(records, body.RecordID)
	if !ok {
		return perr.Validationf("REVOKE_REPORTER: record %q does not exist", body.RecordID)
	}
	if record.Owner != signer {
		return perr.Validationf("REVOKE_REPORTER: signer %s is not the owner of %q", signer, body.RecordID)
	}

	propAddr := PropertyAddress(body.RecordID, body.PropertyName)
	props, err := loadContainer(state, propAddr, DecodeProperty)
	if err != nil {
		return err
	}
	property, ok := Find(props, body.PropertyName)
	if !ok {
		return perr.Validationf("REVOKE_REPORTER: property %q does not exist", body.PropertyName)
	}

	found := false
	for i, r := range property.Reporters {
		if r.PublicKey == body.ReporterID {
			if !r.Authorized {
				return perr.Validationf("REVOKE_REPORTER: reporter %s is not currently authorized", body.ReporterID)
			}
			property.Reporters[i].Authorized = false
			found = true
			break
		}
	}
	if !found {
		return perr.Validationf("REVOKE_REPORTER: reporter %s is not on property %q", body.ReporterID, body.PropertyName)
	}
	props = Upsert(props, property)
	return saveContainer(state, propAddr, props)
}

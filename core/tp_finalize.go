package core

import "provenance-chain/internal/perr"

// applyFinalizeRecord implements FINALIZE_RECORD (spec.md §4.3).
func applyFinalizeRecord(state StateRW, signer string, body FinalizeRecordBody) error {
	if body.RecordID == "" {
		return perr.Validationf("FINALIZE_RECORD: recordId must not be empty")
	}
	address := RecordAddress(body.RecordID)
	records, err := loadContainer(state, address, DecodeRecord)
	if err != nil {
		return err
	}
	record, ok := Find(records, body.RecordID)
	if !ok {
		return perr.Validationf("FINALIZE_RECORD: record %q does not exist", body.RecordID)
	}
	if record.Final {
		return perr.Validationf("FINALIZE_RECORD: record %q is already final", body.RecordID)
	}
	if signer != record.Owner || signer != record.Custodian {
		return perr.Validationf("FINALIZE_RECORD: signer %s must be both owner and custodian of %q", signer, body.RecordID)
	}
	record.Final = true
	records = Upsert(records, record)
	return saveContainer(state, address, records)
}

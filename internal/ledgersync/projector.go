package ledgersync

// Projector implements the per-block job from spec.md §4.5: partition
// changes into PropertyPage and non-PropertyPage, apply the latter first,
// wait the settle interval only if PropertyPage changes exist, then apply
// PropertyPage changes with ENUM/STRUCT enrichment sourced from the
// corresponding Property row.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"provenance-chain/core"
	"provenance-chain/internal/perr"
	"provenance-chain/internal/platform"
	"provenance-chain/internal/store"
)

// SettleInterval is the wait between applying non-PropertyPage and
// PropertyPage changes within one block, per spec.md §4.5 step 4.
const SettleInterval = 100 * time.Millisecond

type Projector struct {
	store store.Store
	log   *logrus.Logger
	metrics *Metrics
}

func NewProjector(s store.Store, log *logrus.Logger, metrics *Metrics) *Projector {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Projector{store: s, log: log, metrics: metrics}
}

// Apply runs the full per-block job against delta and is the function
// handed to Queue as its project callback.
func (p *Projector) Apply(ctx context.Context, delta platform.BlockDelta) error {
	blockNum := int64(delta.BlockNum)

	var pageChanges []platform.StateChange
	for _, change := range delta.Changes {
		if change.Deleted {
			continue // the family never tombstones state; nothing to project
		}
		kind, _, err := core.AddressKind(change.Address)
		if err != nil {
			p.logDecodeError(perr.Decode(change.Address, err))
			continue
		}
		if kind == core.KindPropertyPage {
			pageChanges = append(pageChanges, change)
			continue
		}
		if err := p.applyChange(ctx, kind, change, blockNum); err != nil {
			var de *perr.DecodeError
			if errors.As(err, &de) {
				p.logDecodeError(err)
				continue
			}
			return err
		}
	}

	if len(pageChanges) > 0 {
		select {
		case <-time.After(SettleInterval):
		case <-ctx.Done():
			return ctx.Err()
		}
		for _, change := range pageChanges {
			if err := p.applyPropertyPage(ctx, change, blockNum); err != nil {
				var de *perr.DecodeError
				if errors.As(err, &de) {
					p.logDecodeError(err)
					continue
				}
				return err
			}
		}
	}

	return p.store.InsertBlock(ctx, blockNum, delta.BlockID)
}

func (p *Projector) logDecodeError(err error) {
	if p.metrics != nil {
		p.metrics.deltaDecodeErrors.Inc()
	}
	p.log.WithError(err).Warn("ledgersync: skipping undecodable state change")
}

func (p *Projector) applyChange(ctx context.Context, kind core.EntityKind, change platform.StateChange, blockNum int64) error {
	switch kind {
	case core.KindAgent:
		entries, err := core.DecodeContainer(change.Value, core.DecodeAgent)
		if err != nil {
			return perr.Decode(change.Address, err)
		}
		for _, e := range entries {
			if err := p.upsertJSON(ctx, store.TableAgents, e.PublicKey, e, blockNum); err != nil {
				return err
			}
		}
	case core.KindRecordType:
		entries, err := core.DecodeContainer(change.Value, core.DecodeRecordType)
		if err != nil {
			return perr.Decode(change.Address, err)
		}
		for _, e := range entries {
			if err := p.upsertJSON(ctx, store.TableRecordTypes, e.Name, e, blockNum); err != nil {
				return err
			}
		}
	case core.KindRecord:
		entries, err := core.DecodeContainer(change.Value, core.DecodeRecord)
		if err != nil {
			return perr.Decode(change.Address, err)
		}
		for _, e := range entries {
			if err := p.upsertJSON(ctx, store.TableRecords, e.RecordID, e, blockNum); err != nil {
				return err
			}
		}
	case core.KindProperty:
		entries, err := core.DecodeContainer(change.Value, core.DecodeProperty)
		if err != nil {
			return perr.Decode(change.Address, err)
		}
		for _, e := range entries {
			if err := p.upsertJSON(ctx, store.TableProperties, propertyIndex(e.Name, e.RecordID), e, blockNum); err != nil {
				return err
			}
		}
	case core.KindProposal:
		entries, err := core.DecodeContainer(change.Value, core.DecodeProposal)
		if err != nil {
			return perr.Decode(change.Address, err)
		}
		for _, e := range entries {
			idx := proposalIndex(e.RecordID, e.Timestamp, e.ReceivingAgent, e.Role)
			if err := p.upsertJSON(ctx, store.TableProposals, idx, e, blockNum); err != nil {
				return err
			}
		}
	default:
		return perr.Decode(change.Address, fmt.Errorf("unrecognised address kind"))
	}
	return nil
}

// enrichedReport mirrors core.PropertyValueReport with enumValue rewritten
// to its string label and structValues folded into a keyed map, per
// spec.md §4.5's PropertyPage enrichment rule.
type enrichedReport struct {
	core.PropertyValueReport
	EnumLabel   string         `json:"enumLabel,omitempty"`
	StructValue map[string]any `json:"structValue,omitempty"`
}

func (p *Projector) applyPropertyPage(ctx context.Context, change platform.StateChange, blockNum int64) error {
	pages, err := core.DecodeContainer(change.Value, core.DecodePropertyPage)
	if err != nil {
		return perr.Decode(change.Address, err)
	}
	for _, page := range pages {
		propRow, ok, err := p.store.Live(ctx, store.TableProperties, propertyIndex(page.Name, page.RecordID))
		if err != nil {
			return err
		}
		if !ok {
			p.log.WithFields(logrus.Fields{"record_id": page.RecordID, "name": page.Name}).
				Warn("ledgersync: no Property row for PropertyPage, skipping")
			continue
		}
		var prop core.Property
		if err := json.Unmarshal(propRow.Doc, &prop); err != nil {
			return perr.Decode(propRow.IndexValue, err)
		}

		enriched := make([]enrichedReport, 0, len(page.Reports))
		for _, r := range page.Reports {
			er := enrichedReport{PropertyValueReport: r}
			switch prop.DataType {
			case core.DataTypeEnum:
				idx := int(r.Value.EnumValue)
				if idx >= 0 && idx < len(prop.EnumOptions) {
					er.EnumLabel = prop.EnumOptions[idx]
				}
				er.PropertyValueReport.Value.EnumValue = 0
			case core.DataTypeStruct:
				er.StructValue = foldStructValues(r.Value.StructValues)
				er.PropertyValueReport.Value.StructValues = nil
			}
			enriched = append(enriched, er)
		}

		doc, err := json.Marshal(struct {
			core.PropertyPage
			Reports []enrichedReport `json:"enrichedReports"`
		}{PropertyPage: page, Reports: enriched})
		if err != nil {
			return fmt.Errorf("ledgersync: marshal property page: %w", err)
		}
		idx := fmt.Sprintf("%s/%s/%04x", page.Name, page.RecordID, page.PageNum)
		if err := p.store.BlockUpsert(ctx, store.TablePropertyPages, idx, doc, blockNum); err != nil {
			return err
		}
	}
	return nil
}

// foldStructValues recursively folds a STRUCT PropertyValue's child list
// into a keyed map, name -> value (recursing again for nested STRUCTs), per
// spec.md §4.5's enrichment rule.
func foldStructValues(values []core.PropertyValue) map[string]any {
	out := make(map[string]any, len(values))
	for _, v := range values {
		switch v.DataType {
		case core.DataTypeStruct:
			out[v.Name] = foldStructValues(v.StructValues)
		case core.DataTypeEnum:
			out[v.Name] = v.EnumValue
		case core.DataTypeBytes:
			out[v.Name] = v.BytesValue
		case core.DataTypeBoolean:
			out[v.Name] = v.BooleanValue
		case core.DataTypeNumber:
			out[v.Name] = v.NumberValue
		case core.DataTypeString:
			out[v.Name] = v.StringValue
		case core.DataTypeLocation:
			out[v.Name] = v.LocationValue
		}
	}
	return out
}

func (p *Projector) upsertJSON(ctx context.Context, table store.Table, indexValue string, entity any, blockNum int64) error {
	doc, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("ledgersync: marshal %s: %w", table, err)
	}
	return p.store.BlockUpsert(ctx, table, indexValue, doc, blockNum)
}

func propertyIndex(name, recordID string) string {
	return fmt.Sprintf("%s/%s", name, recordID)
}

func proposalIndex(recordID string, timestamp int64, receivingAgent string, role core.Role) string {
	return fmt.Sprintf("%s/%020d/%s/%d", recordID, timestamp, receivingAgent, role)
}

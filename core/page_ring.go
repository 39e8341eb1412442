package core

import "sort"

// PageSize is the number of reports a PropertyPage holds before the
// property's writer rolls over to the next page (spec.md §3 invariant 4).
const PageSize = 256

// loadPropertyPage fetches the page at (recordID, name, pageNum), returning
// an empty page (not an error) if nothing has been written there yet.
func loadPropertyPage(state StateRW, recordID, name string, pageNum uint16) (PropertyPage, error) {
	addr := PropertyPageAddress(recordID, name, pageNum)
	pages, err := loadContainer(state, addr, DecodePropertyPage)
	if err != nil {
		return PropertyPage{}, err
	}
	if len(pages) == 0 {
		return PropertyPage{Name: name, RecordID: recordID, PageNum: pageNum}, nil
	}
	return pages[0], nil
}

func savePropertyPage(state StateRW, page PropertyPage) error {
	addr := PropertyPageAddress(page.RecordID, page.Name, page.PageNum)
	return state.SetState(addr, EncodeContainer([]PropertyPage{page}))
}

// appendPropertyReport appends report to property's current page, rolling
// over to the next page (wrapping PageNum back to 1 past MaxPages and
// overwriting its former contents) whenever the current page is already
// full. property is mutated in place to reflect any page advance; callers
// must persist the updated Property container afterward.
func appendPropertyReport(state StateRW, property *Property, report PropertyValueReport) error {
	if property.CurrentPage == 0 {
		property.CurrentPage = 1
	}
	page, err := loadPropertyPage(state, property.RecordID, property.Name, property.CurrentPage)
	if err != nil {
		return err
	}
	if len(page.Reports) >= PageSize {
		next := property.CurrentPage + 1
		if property.CurrentPage >= MaxPages {
			next = 1
			property.Wrapped = true
		}
		property.CurrentPage = next
		page = PropertyPage{Name: property.Name, RecordID: property.RecordID, PageNum: next}
	}
	page.Reports = append(page.Reports, report)
	sort.SliceStable(page.Reports, func(i, j int) bool {
		if page.Reports[i].Timestamp != page.Reports[j].Timestamp {
			return page.Reports[i].Timestamp < page.Reports[j].Timestamp
		}
		return page.Reports[i].ReporterIndex < page.Reports[j].ReporterIndex
	})
	return savePropertyPage(state, page)
}

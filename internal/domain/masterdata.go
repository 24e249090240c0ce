package domain

// MasterDataEntry is one catalog code of a given kind.
type MasterDataEntry struct {
	ID          string  `json:"id"`
	Kind        RowKind `json:"kind"`
	Code        string  `json:"code"`
	Description string  `json:"description"`
}

// MasterDataItem is the kind-less view returned by catalog listings.
type MasterDataItem struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Item drops the id and kind.
func (e *MasterDataEntry) Item() MasterDataItem {
	return MasterDataItem{Code: e.Code, Description: e.Description}
}

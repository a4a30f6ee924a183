package handler

// CountData wraps a bare count
type CountData struct {
	Count int64 `json:"count"`
}

package portal

import (
	"net/url"

	"github.com/PuerkitoBio/goquery"

	"ResultsMonitor/internal/model"
)

// HarvestForm collects name/value pairs from every input on the page, hidden CAS
// tokens included. Later inputs with the same name win. An input without a value
// attribute is not submitted, so it also clears an earlier input of that name.
func HarvestForm(doc *goquery.Document) url.Values {
	fields := url.Values{}
	doc.Find("input").Each(func(_ int, s *goquery.Selection) {
		name, ok := s.Attr("name")
		if !ok {
			return
		}
		value, ok := s.Attr("value")
		if !ok {
			fields.Del(name)
			return
		}
		fields.Set(name, value)
	})
	return fields
}

// MergeCredentials overlays the username and password onto harvested fields.
// Credentials always take precedence over hidden defaults.
func MergeCredentials(fields url.Values, creds model.Credentials) url.Values {
	merged := make(url.Values, len(fields)+2)
	for k, v := range fields {
		merged[k] = append([]string(nil), v...)
	}
	merged.Set("username", creds.Username)
	merged.Set("password", creds.Password)
	return merged
}

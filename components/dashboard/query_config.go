package dashboard

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/ettle/strcase"

	"github.com/goliatone/go-sales-dashboard/components/sales"
)

// Widget configuration keys shared by the sales widgets.
const (
	cfgSellerID  = "seller_id"
	cfgProductID = "product_id"
	cfgCategory  = "category"
	cfgTopN      = "top_n"
	cfgStartDate = "start_date"
	cfgEndDate   = "end_date"
	cfgTimeRange = "time_range"
	cfgPage      = "page"
	cfgPageSize  = "page_size"
)

// NormalizeConfig rewrites configuration keys to snake_case so payloads from
// the browser (sellerId, topN) and from manifests (seller_id) look the same.
func NormalizeConfig(cfg map[string]any) map[string]any {
	out := make(map[string]any, len(cfg))
	for k, v := range cfg {
		out[strcase.ToSnake(k)] = v
	}
	return out
}

// QueryFromConfig builds the sales query described by a widget configuration.
func QueryFromConfig(cfg map[string]any) (sales.Query, error) {
	cfg = NormalizeConfig(cfg)
	q := sales.Query{
		SellerID:  stringValue(cfg[cfgSellerID], ""),
		ProductID: stringValue(cfg[cfgProductID], ""),
		Category:  stringValue(cfg[cfgCategory], ""),
		TimeRange: sales.TimeRange(strings.ToLower(stringValue(cfg[cfgTimeRange], ""))),
	}
	topN, err := intValue(cfg[cfgTopN])
	if err != nil {
		return sales.Query{}, fmt.Errorf("%w: top_n: %v", sales.ErrInvalidQuery, err)
	}
	q.TopN = topN
	if q.StartDate, err = dayValue(cfg[cfgStartDate]); err != nil {
		return sales.Query{}, fmt.Errorf("%w: start_date: %v", sales.ErrInvalidQuery, err)
	}
	if q.EndDate, err = dayValue(cfg[cfgEndDate]); err != nil {
		return sales.Query{}, fmt.Errorf("%w: end_date: %v", sales.ErrInvalidQuery, err)
	}
	return q, nil
}

// ConfigFromQuery is the inverse of QueryFromConfig.
func ConfigFromQuery(q sales.Query) map[string]any {
	cfg := map[string]any{cfgSellerID: q.SellerID}
	if q.ProductID != "" {
		cfg[cfgProductID] = q.ProductID
	}
	if q.Category != "" {
		cfg[cfgCategory] = q.Category
	}
	if q.TopN > 0 {
		cfg[cfgTopN] = q.TopN
	}
	if q.StartDate != 0 {
		cfg[cfgStartDate] = q.StartDate.String()
	}
	if q.EndDate != 0 {
		cfg[cfgEndDate] = q.EndDate.String()
	}
	if q.TimeRange != "" {
		cfg[cfgTimeRange] = string(q.TimeRange)
	}
	return cfg
}

// FilterFromValues turns query-string parameters into a widget
// configuration. Numeric fields are parsed so they satisfy the widget
// schema; empty values are dropped.
func FilterFromValues(values url.Values) (map[string]any, error) {
	cfg := map[string]any{}
	for key := range values {
		value := strings.TrimSpace(values.Get(key))
		if value == "" {
			continue
		}
		key = strcase.ToSnake(key)
		switch key {
		case cfgTopN, cfgPage, cfgPageSize:
			n, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %v", sales.ErrInvalidQuery, key, err)
			}
			cfg[key] = n
		default:
			cfg[key] = value
		}
	}
	return cfg, nil
}

func dayValue(v any) (sales.Day, error) {
	switch val := v.(type) {
	case nil:
		return 0, nil
	case sales.Day:
		return val, nil
	case string:
		if strings.TrimSpace(val) == "" {
			return 0, nil
		}
		return sales.ParseDay(val)
	default:
		return 0, fmt.Errorf("unsupported date value %v", v)
	}
}

func intValue(v any) (int, error) {
	switch val := v.(type) {
	case nil:
		return 0, nil
	case int:
		return val, nil
	case int64:
		return int(val), nil
	case float64:
		if val != float64(int(val)) {
			return 0, fmt.Errorf("%v is not an integer", val)
		}
		return int(val), nil
	case string:
		if strings.TrimSpace(val) == "" {
			return 0, nil
		}
		return strconv.Atoi(strings.TrimSpace(val))
	default:
		return 0, fmt.Errorf("unsupported integer value %v", v)
	}
}

func stringValue(v any, fallback string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return fallback
}

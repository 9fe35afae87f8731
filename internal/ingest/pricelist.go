package ingest

import (
	"regexp"
	"strconv"
	"strings"

	"hardware-catalog-service/internal/domain"
)

// Dealer price lists are positional: every item row carries the same six
// columns in the same order.
const (
	colVendorCode = iota
	colName
	colMarketPrice
	colPrice
	colSupplierPrice
	colWarrantyMonths
)

// daysPerMonth is the average Gregorian month length. Warranty arrives in
// months and is stored in days without rounding.
const daysPerMonth = 30.436875

// ProductImport is one normalized line item from a dealer price list.
type ProductImport struct {
	VendorCode    string
	Category      string
	Name          string
	Model         string
	Maker         string
	MarketPrice   float64
	Price         float64
	SupplierPrice float64
	WarrantyDays  float64
	Count         int32
}

// Product converts the import into a catalog record attributed to createdBy.
func (pi ProductImport) Product(createdBy *string) domain.Product {
	return domain.Product{
		Name:          pi.Name,
		Category:      pi.Category,
		VendorCode:    pi.VendorCode,
		Maker:         pi.Maker,
		Model:         pi.Model,
		Price:         pi.Price,
		MarketPrice:   pi.MarketPrice,
		SupplierPrice: pi.SupplierPrice,
		WarrantyDays:  pi.WarrantyDays,
		Count:         pi.Count,
		CreatedBy:     createdBy,
	}
}

// ParsePriceList walks the sheet top to bottom. Rows matching the header
// shape open a new category group; every following item row inherits that
// category until the next header. Item rows before the first header have no
// category to inherit and are dropped. Row order is preserved across groups.
//
// Malformed item rows are not rejected: missing cells default to zero values,
// including the name. The legacy importer behaved the same way and the
// upsert key is the name, so tightening this would silently change which
// records a re-ingest touches.
func ParsePriceList(grid [][]string) []ProductImport {
	var imports []ProductImport
	category := ""

	for _, row := range grid {
		if isBlankRow(row) {
			continue
		}
		if label, ok := categoryHeader(row); ok {
			category = label
			continue
		}
		if category == "" {
			continue
		}

		name := cell(row, colName)
		model := deriveModel(name)
		imports = append(imports, ProductImport{
			VendorCode:    vendorCode(cell(row, colVendorCode)),
			Category:      category,
			Name:          name,
			Model:         model,
			Maker:         deriveMaker(model),
			MarketPrice:   parseNumber(cell(row, colMarketPrice)),
			Price:         parseNumber(cell(row, colPrice)),
			SupplierPrice: parseNumber(cell(row, colSupplierPrice)),
			WarrantyDays:  parseNumber(cell(row, colWarrantyMonths)) * daysPerMonth,
			Count:         1,
		})
	}

	return imports
}

// categoryHeader reports whether the row has the header shape: a label in
// the leading columns and nothing in the four numeric columns.
func categoryHeader(row []string) (string, bool) {
	for idx := colMarketPrice; idx <= colWarrantyMonths; idx++ {
		if cell(row, idx) != "" {
			return "", false
		}
	}
	for idx := colVendorCode; idx <= colName; idx++ {
		if label := cell(row, idx); label != "" {
			return label, true
		}
	}
	return "", false
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// cell returns the trimmed cell at idx, or "" when the row is too short.
func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func vendorCode(raw string) string {
	if raw == "" {
		return "0"
	}
	return raw
}

// parseNumber is deliberately forgiving: anything that does not parse as a
// number counts as zero, matching the sheet's "empty cell means zero"
// convention.
func parseNumber(raw string) float64 {
	if raw == "" {
		return 0
	}
	// Dealer sheets occasionally use a decimal comma.
	raw = strings.ReplaceAll(raw, ",", ".")
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return n
}

// deriveModel is the substring of the name before the first comma; a name
// with no comma is its own model.
func deriveModel(name string) string {
	if idx := strings.Index(name, ","); idx >= 0 {
		return name[:idx]
	}
	return name
}

var nonLetterOrSpace = regexp.MustCompile(`[^a-zA-Z ]`)

// deriveMaker takes the first whitespace-delimited token of the model after
// stripping everything outside [a-zA-Z ]. "Ryzen 5 5600X" strips to
// "Ryzen  X" and yields "Ryzen". A model with no spaces left yields the
// whole stripped string; an empty model yields "".
func deriveMaker(model string) string {
	stripped := strings.TrimSpace(nonLetterOrSpace.ReplaceAllString(model, ""))
	if stripped == "" {
		return ""
	}
	return strings.Fields(stripped)[0]
}

package catalog

import (
	"fmt"
	"strconv"

	"github.com/merx-cloud/prodex/internal/domain"
)

// Hash field names for a product record.
const (
	fieldName          = "name"
	fieldCategory      = "category"
	fieldSpecification = "specification"
	fieldPrice         = "price"
	fieldUnit          = "unit"
	fieldStock         = "stock"
	fieldMinStock      = "min_stock"
	fieldDescription   = "description"
	fieldKeywords      = "keywords"
	fieldBarcode       = "barcode"
	fieldStorageArea   = "storage_area"
	fieldStatus        = "status"
)

// buildHashFields converts a domain ProductRecord into a flat
// map[string]string for HSET.
func buildHashFields(p *domain.ProductRecord) map[string]string {
	return map[string]string{
		fieldName:          p.Name,
		fieldCategory:      p.Category,
		fieldSpecification: p.Specification,
		fieldPrice:         strconv.FormatFloat(p.Price, 'f', -1, 64),
		fieldUnit:          p.Unit,
		fieldStock:         strconv.Itoa(p.Stock),
		fieldMinStock:      strconv.Itoa(p.MinStock),
		fieldDescription:   p.Description,
		fieldKeywords:      p.Keywords,
		fieldBarcode:       p.Barcode,
		fieldStorageArea:   p.StorageArea,
		fieldStatus:        p.Status,
	}
}

// parseHashFields converts a flat hash map back into a ProductRecord.
// A record without a name is considered malformed.
func parseHashFields(id string, m map[string]string) (domain.ProductRecord, error) {
	if m[fieldName] == "" {
		return domain.ProductRecord{}, fmt.Errorf("product %s: missing name", id)
	}

	price, err := parseFloatField(id, fieldPrice, m[fieldPrice])
	if err != nil {
		return domain.ProductRecord{}, err
	}
	stock, err := parseIntField(id, fieldStock, m[fieldStock])
	if err != nil {
		return domain.ProductRecord{}, err
	}
	minStock, err := parseIntField(id, fieldMinStock, m[fieldMinStock])
	if err != nil {
		return domain.ProductRecord{}, err
	}

	return domain.ProductRecord{
		ID:            id,
		Name:          m[fieldName],
		Category:      m[fieldCategory],
		Specification: m[fieldSpecification],
		Price:         price,
		Unit:          m[fieldUnit],
		Stock:         stock,
		MinStock:      minStock,
		Description:   m[fieldDescription],
		Keywords:      m[fieldKeywords],
		Barcode:       m[fieldBarcode],
		StorageArea:   m[fieldStorageArea],
		Status:        m[fieldStatus],
	}, nil
}

func parseFloatField(id, field, raw string) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("product %s: invalid %s %q: %w", id, field, raw, err)
	}
	return v, nil
}

func parseIntField(id, field, raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("product %s: invalid %s %q: %w", id, field, raw, err)
	}
	return v, nil
}

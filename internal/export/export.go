// Package export writes queue items as CSV, JSON or YAML.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"
	"gopkg.in/yaml.v3"

	"github.com/Veraticus/expense-queue/internal/model"
)

// Format is an output encoding.
type Format string

// Supported formats.
const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts a format name or a file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported export format %q (want csv, json or yaml)", s)
	}
}

// Row is the flattened form of a queue item.
type Row struct {
	ID                int      `csv:"id" json:"id" yaml:"id"`
	Date              string   `csv:"date" json:"date" yaml:"date"`
	Amount            string   `csv:"amount" json:"amount" yaml:"amount"`
	Currency          string   `csv:"currency" json:"currency" yaml:"currency"`
	RawMerchant       string   `csv:"raw_merchant" json:"raw_merchant" yaml:"raw_merchant"`
	Merchant          string   `csv:"merchant" json:"merchant,omitempty" yaml:"merchant,omitempty"`
	MerchantSuggested bool     `csv:"merchant_suggested" json:"merchant_suggested" yaml:"merchant_suggested"`
	CategoryID        string   `csv:"category_id" json:"category_id,omitempty" yaml:"category_id,omitempty"`
	Category          string   `csv:"category" json:"category,omitempty" yaml:"category,omitempty"`
	Type              string   `csv:"type" json:"type,omitempty" yaml:"type,omitempty"`
	Description       string   `csv:"description" json:"description,omitempty" yaml:"description,omitempty"`
	RawDescription    string   `csv:"raw_description" json:"raw_description" yaml:"raw_description"`
	Source            string   `csv:"source" json:"source" yaml:"source"`
	Tags              []string `csv:"-" json:"tags" yaml:"tags"`
	TagList           string   `csv:"tags" json:"-" yaml:"-"`
}

// Rows flattens items, resolving category names from categories.
func Rows(items []model.QueueItem, categories []model.Category) []Row {
	rows := make([]Row, 0, len(items))
	for _, item := range items {
		row := Row{
			ID:             item.ID,
			Date:           item.TransactionDate,
			Amount:         item.Amount.StringFixed(2),
			Currency:       item.Currency,
			RawMerchant:    item.RawMerchantName,
			Type:           string(item.EffectiveType()),
			Description:    item.Description,
			RawDescription: item.RawDescription,
			Source:         item.Source,
			Tags:           append([]string{}, item.Tags...),
			TagList:        strings.Join(item.Tags, ";"),
		}
		if _, ok := item.EffectiveMerchantID(); ok {
			row.Merchant = item.MerchantLabel()
			_, resolved := item.ResolvedMerchantID()
			row.MerchantSuggested = !resolved
		}
		if id, ok := item.EffectiveCategoryID(); ok {
			row.CategoryID = fmt.Sprint(id)
			switch {
			case item.Category != nil && item.Category.ID == id:
				row.Category = item.Category.Name
			default:
				if c, found := model.FindCategory(categories, id); found {
					row.Category = c.Name
				}
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// Options tunes the writers.
type Options struct {
	// Delimiter separates CSV fields. Defaults to a comma.
	Delimiter rune
}

// Write encodes items to w in the given format.
func Write(w io.Writer, format Format, items []model.QueueItem, categories []model.Category, opts Options) error {
	rows := Rows(items, categories)

	switch format {
	case FormatCSV:
		writer := csv.NewWriter(w)
		if opts.Delimiter != 0 {
			writer.Comma = opts.Delimiter
		}
		if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(writer)); err != nil {
			return fmt.Errorf("error writing CSV data: %w", err)
		}
		return nil
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rows); err != nil {
			return fmt.Errorf("error writing JSON data: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rows); err != nil {
			return fmt.Errorf("error writing YAML data: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

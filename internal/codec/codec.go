// Package codec converts products to and from the line-oriented collection
// format: one product per line, seven comma-separated fields in the order
// name, id, category, quantity, price, min stock, date. Fields are written
// as-is, so they must not contain the delimiter or a line break.
package codec

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"gudang/internal/models"

	"github.com/shopspring/decimal"
)

const fieldCount = 7

// MaxLineLength bounds a stored line. A well-formed product line is far
// shorter; anything longer is skipped without being parsed.
const MaxLineLength = 1024

// Result is the outcome of Decode.
type Result struct {
	Products []models.Product
	// Skipped counts non-blank lines that did not parse into a product.
	Skipped int
}

// Encode writes one line per product.
func Encode(w io.Writer, products []models.Product) error {
	bw := bufio.NewWriter(w)
	for _, p := range products {
		if _, err := bw.WriteString(EncodeProduct(p)); err != nil {
			return fmt.Errorf("failed to encode product %s: %w", p.ID, err)
		}
		if err := bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("failed to encode product %s: %w", p.ID, err)
		}
	}
	return bw.Flush()
}

// EncodeToString is Encode into a string.
func EncodeToString(products []models.Product) string {
	var sb strings.Builder
	_ = Encode(&sb, products)
	return sb.String()
}

// EncodeProduct renders a single product line without the trailing newline.
func EncodeProduct(p models.Product) string {
	return strings.Join([]string{
		p.Name,
		p.ID,
		p.Category,
		strconv.Itoa(p.Quantity),
		p.Price.StringFixed(2),
		strconv.Itoa(p.MinStock),
		p.Date,
	}, models.Delimiter)
}

// Decode reads products until r is exhausted or limit products were collected.
// A limit of zero or less reads everything. Lines that do not hold exactly one
// well-formed product, lines longer than MaxLineLength and lines repeating an
// ID already read are dropped and counted in Result.Skipped. A read error
// returns the products decoded so far together with the error.
func Decode(r io.Reader, limit int) (Result, error) {
	var res Result
	seen := make(map[string]struct{})
	br := bufio.NewReader(r)
	for {
		if limit > 0 && len(res.Products) >= limit {
			break
		}
		raw, tooLong, err := readLine(br, MaxLineLength)
		if err != nil && err != io.EOF {
			return res, fmt.Errorf("failed to read collection: %w", err)
		}

		line := strings.TrimRight(raw, "\r\n")
		switch {
		case tooLong:
			res.Skipped++
		case strings.TrimSpace(line) == "":
		default:
			p, perr := DecodeProduct(line)
			if perr != nil {
				res.Skipped++
				break
			}
			if _, dup := seen[p.ID]; dup {
				res.Skipped++
				break
			}
			seen[p.ID] = struct{}{}
			res.Products = append(res.Products, p)
		}

		if err == io.EOF {
			break
		}
	}
	return res, nil
}

// readLine returns the next line including its terminator. A line longer than
// max is consumed in full but reported as tooLong with its content discarded.
func readLine(br *bufio.Reader, max int) (string, bool, error) {
	var (
		buf     []byte
		tooLong bool
	)
	for {
		chunk, err := br.ReadSlice('\n')
		if !tooLong {
			if len(buf)+len(chunk) > max {
				tooLong = true
				buf = nil
			} else {
				buf = append(buf, chunk...)
			}
		}
		if err == bufio.ErrBufferFull {
			continue
		}
		return string(buf), tooLong, err
	}
}

// DecodeProduct parses one line.
func DecodeProduct(line string) (models.Product, error) {
	fields := strings.Split(line, models.Delimiter)
	if len(fields) != fieldCount {
		return models.Product{}, fmt.Errorf("expected %d fields, got %d", fieldCount, len(fields))
	}

	p := models.Product{
		Name:     fields[0],
		ID:       fields[1],
		Category: fields[2],
		Date:     fields[6],
	}
	if err := checkText("name", p.Name, models.MaxNameLength); err != nil {
		return models.Product{}, err
	}
	if err := checkText("id", p.ID, models.MaxIDLength); err != nil {
		return models.Product{}, err
	}
	if err := checkText("category", p.Category, models.MaxCategoryLength); err != nil {
		return models.Product{}, err
	}
	if _, err := time.Parse(models.DateLayout, p.Date); err != nil {
		return models.Product{}, fmt.Errorf("invalid date %q: %w", p.Date, err)
	}

	var err error
	if p.Quantity, err = parseCount("quantity", fields[3]); err != nil {
		return models.Product{}, err
	}
	if p.MinStock, err = parseCount("min stock", fields[5]); err != nil {
		return models.Product{}, err
	}
	if p.Price, err = decimal.NewFromString(strings.TrimSpace(fields[4])); err != nil {
		return models.Product{}, fmt.Errorf("invalid price %q: %w", fields[4], err)
	}
	if p.Price.IsNegative() {
		return models.Product{}, fmt.Errorf("negative price %s", fields[4])
	}
	if err := models.ValidateProduct(p); err != nil {
		return models.Product{}, err
	}
	return p, nil
}

func checkText(name, value string, max int) error {
	if value == "" {
		return fmt.Errorf("%s is empty", name)
	}
	if utf8.RuneCountInString(value) > max {
		return fmt.Errorf("%s longer than %d characters", name, max)
	}
	return nil
}

func parseCount(name, value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, value, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("negative %s %d", name, n)
	}
	return n, nil
}

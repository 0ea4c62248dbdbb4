package reportservice

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FormatCurrency formata um valor como "1234.50 Bath".
func FormatCurrency(amount decimal.Decimal) string {
	return amount.StringFixed(2) + " Bath"
}

var (
	mainBranch   = regexp.MustCompile(`FMC สาขาใหญ่`)
	numberBranch = regexp.MustCompile(`FMC สาขา\s*(\d+)`)

	companyWords = strings.NewReplacer(
		"บริษัท", "Company",
		"สาขา", "Branch",
		"ใหญ่", "Main",
	)
)

// FormatCompanyName traduz o nome da filial para o relatório em inglês:
// "บริษัท FMC สาขาใหญ่" vira "Company FMC Main Branch" e "บริษัท FMC สาขา 2"
// vira "Company FMC Branch 2".
func FormatCompanyName(location string) string {
	out := mainBranch.ReplaceAllString(location, "FMC Main Branch")
	out = numberBranch.ReplaceAllString(out, "FMC Branch $1")
	return companyWords.Replace(out)
}

// FormatDate formata a data por extenso em inglês ("May 1, 2024").
func FormatDate(t time.Time) string {
	return t.Format("January 2, 2006")
}

var thaiToLatin = map[rune]string{
	'ก': "k", 'ข': "kh", 'ค': "kh", 'ฆ': "kh", 'ง': "ng",
	'จ': "ch", 'ฉ': "ch", 'ช': "ch", 'ซ': "s", 'ฌ': "ch",
	'ญ': "y", 'ฎ': "d", 'ฏ': "t", 'ฐ': "th", 'ฑ': "th",
	'ฒ': "th", 'ณ': "n", 'ด': "d", 'ต': "t", 'ถ': "th",
	'ท': "th", 'ธ': "th", 'น': "n", 'บ': "b", 'ป': "p",
	'ผ': "ph", 'ฝ': "f", 'พ': "ph", 'ฟ': "f", 'ภ': "ph",
	'ม': "m", 'ย': "y", 'ร': "r", 'ล': "l", 'ว': "w",
	'ศ': "s", 'ษ': "s", 'ส': "s", 'ห': "h", 'ฬ': "l",
	'อ': "a", 'ฮ': "h", 'ะ': "a", 'ั': "a", 'า': "a",
	'ำ': "am", 'ิ': "i", 'ี': "i", 'ึ': "ue", 'ื': "ue",
	'ุ': "u", 'ู': "u", 'เ': "e", 'แ': "ae", 'โ': "o",
	'ใ': "ai", 'ไ': "ai", '่': "", '้': "", '๊': "", '๋': "",
	'็': "", '์': "", 'ํ': "", 'ๆ': "",
}

// Transliterate troca cada caractere tailandês pela grafia latina da tabela,
// caractere a caractere. O resto do texto passa sem alteração.
func Transliterate(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if latin, ok := thaiToLatin[r]; ok {
			b.WriteString(latin)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

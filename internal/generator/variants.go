package generator

import (
	"fmt"

	"fitbot/internal/i18n"
)

// variantPicker перебирает варианты шаблонов family_1..family_N по кругу,
// начиная со случайного, чтобы в одном плане тексты не повторялись подряд
type variantPicker struct {
	rnd    *randSource
	offset map[string]int
	used   map[string]int
}

func newVariantPicker(rnd *randSource) *variantPicker {
	return &variantPicker{
		rnd:    rnd,
		offset: make(map[string]int),
		used:   make(map[string]int),
	}
}

// next индекс следующего варианта семейства, с нуля
func (v *variantPicker) next(family string) int {
	n := len(i18n.Variants(family, i18n.DefaultLang))
	if n == 0 {
		return 0
	}
	if _, ok := v.offset[family]; !ok {
		v.offset[family] = v.rnd.Intn(n)
	}
	idx := (v.offset[family] + v.used[family]) % n
	v.used[family]++
	return idx
}

// variantOf текст варианта idx на языке lang
func variantOf(family string, idx int, lang i18n.Language) string {
	variants := i18n.Variants(family, lang)
	if len(variants) == 0 {
		return i18n.T(fmt.Sprintf("%s_%d", family, idx+1), lang)
	}
	return variants[idx%len(variants)]
}

package partition

import (
	"strconv"
	"strings"
)

// Enumerate возвращает упорядоченный список имён партиций.
//
// count <= 0 — пустой список. count == 1 — только prefix, без индекса.
// Иначе prefix + индекс от 1 до count, дополненный нулями слева до padWidth.
// Индекс не обрезается, если он длиннее padWidth.
func Enumerate(prefix string, count, padWidth int) []string {
	if count <= 0 {
		return []string{}
	}
	if count == 1 {
		return []string{prefix}
	}

	result := make([]string, 0, count)
	for i := 1; i <= count; i++ {
		result = append(result, prefix+PadStart(strconv.Itoa(i), padWidth, '0'))
	}
	return result
}

// PadStart дополняет s символом pad слева до длины width.
func PadStart(s string, width int, pad byte) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(string(pad), width-len(s)) + s
}

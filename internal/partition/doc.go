// Package partition строит список партиций (dry-run артефактов) из конфигурации.
//
// Список — чистая функция от (prefix, count, padWidth):
//
//	Enumerate("p", 1, 3)  → ["p"]
//	Enumerate("p", 2, 1)  → ["p1", "p2"]
//	Enumerate("p", 12, 2) → ["p01", ..., "p12"]
package partition

// Package engine понимает структуру plan.
//
// Включает:
//   - validate.go — проверка Plan и пакета Job перед отправкой
//   - dag.go      — граф зависимостей и топологическая сортировка (алгоритм Кана)
//   - expand.go   — разворачивание Plan в Job с двусторонними рёбрами
//   - template.go — подстановка значений env в аргументы ({{ .KEY }})
//   - digest.go   — BLAKE3-отпечаток plan
//
// Engine не обращается к хранилищу: это чистые функции над моделью domain.
package engine

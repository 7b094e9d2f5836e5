// Package repo предоставляет типизированный доступ к записям в kv.Store.
//
// Каждая запись — JSON-строка под ключом с префиксом:
//   - job:<id>     — Job
//   - result:<id>  — JobResult
//   - plan:<id>    — PlanRecord
//   - worker:<id>  — WorkerInfo (+ индексный список workers)
package repo

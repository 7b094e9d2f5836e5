// Package orchestrator управляет жизненным циклом DAG из job.
//
// Orchestrator отвечает за:
//   - Проверку и развёртывание Plan в набор Job
//   - Постановку в очередь job без зависимостей
//   - Оценку зависимых при завершении job (только прямые dependents)
//   - Политику при падении: каскадная отмена или удержание
//   - Реестр воркеров: heartbeat, инструменты, теги, запрос остановки
//   - Reaper: разбор processing-списка после потери воркеров
//
// Все состояния хранятся в kv.Store; сам Orchestrator состояния не держит,
// кроме мьютексов на ключи.
package orchestrator

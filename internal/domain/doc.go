// Package domain содержит модель данных Conveyor.
//
// Основные сущности:
//   - Plan — шаблон из упорядоченных задач (TaskTemplate), отправляется один раз
//   - Job — конкретное выполнение одной задачи, узел DAG
//   - PlanRecord — запись об отправленном plan и его job
//   - JobResult — вывод выполненного job
//   - WorkerInfo — запись реестра воркеров
//
// Job хранит двусторонние рёбра DAG: Dependencies и обратный индекс Dependents,
// чтобы при завершении job обходить только его зависимых.
package domain

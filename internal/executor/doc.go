// Package executor выполняет задачи в sandbox.
//
// ExecuteTask запускает одну команду с таймаутом. Таймаут, сбой sandbox и
// ненулевой код выхода не являются ошибками: они превращаются в неуспешный
// TaskResult (exit -1 для таймаута и сбоя sandbox). Ошибку возвращает только
// некорректная задача.
//
// ExecutePlan выполняет задачи plan строго по порядку: stdout задачи из
// input_from_task становится stdin, выполнение останавливается на первой неудаче.
package executor

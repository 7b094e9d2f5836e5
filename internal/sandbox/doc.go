// Package sandbox запускает команды задач в изолированном процессе.
//
// Варианты:
//   - Namespace — через unshare: новые mount и PID namespace, свой /proc
//   - Process — обычный дочерний процесс; изоляция только на уровне процесса
//
// В обоих вариантах окружение ребёнка состоит только из Command.Env,
// окружение воркера не наследуется. Вариант выбирается один раз при старте
// (Detect или New).
package sandbox

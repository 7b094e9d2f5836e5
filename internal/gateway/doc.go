// Package gateway связывает команды протокола с orchestrator и kv.Store.
//
// Каждая команда — тонкий обработчик: разбор аргументов, вызов orchestrator,
// перевод ошибки в код ответа (NOTFOUND, INVALID, CONFLICT, ERR).
// Списочные команды (BRPOPLPUSH, LREM) идут прямо в хранилище.
package gateway

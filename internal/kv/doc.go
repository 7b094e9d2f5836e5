// Package kv — контракт key-value хранилища и его реализации.
//
// Ядру нужны ровно эти примитивы, каждый атомарен сам по себе,
// многоключевых транзакций нет:
//   - Get/Set — строковые записи (job, результаты, реестр)
//   - LPush — постановка id в очередь
//   - BRPopLPush — блокирующий перенос из ready-очереди в processing-список с таймаутом
//   - LRem — удаление id из processing-списка после записи результата
//   - LRange — чтение списка (используется reaper'ом)
//
// Реализации:
//   - Memory   — в памяти процесса, для тестов и одиночного сервера
//   - Redis    — через go-redis, команды Redis один к одному
//   - Postgres — таблицы kv_strings/kv_lists через pgxpool
package kv

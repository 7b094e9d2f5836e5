// Package resp реализует проводной протокол Conveyor — подмножество RESP (Redis).
//
// Кадры (CRLF-терминированные):
//   - '+' простая строка
//   - '-' ошибка
//   - ':' целое число
//   - '$' bulk-строка ($-1 — null)
//   - '*' массив (команда — массив bulk-строк)
//
// Состав:
//   - value.go  — тип Value и конструкторы ответов
//   - reader.go — разбор кадров
//   - writer.go — запись кадров
//   - client.go — клиент (одно соединение, запросы сериализуются мьютексом)
//   - server.go — TCP-сервер с маршрутизацией команд (Mux) и middleware
package resp

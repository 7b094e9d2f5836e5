// Package cli реализует инструмент командной строки conveyor.
//
// # Обзор
//
// CLI говорит с сервером двумя путями:
//   - протокол воркеров (resp.Client, --addr и --session-key): plan submit/show,
//     job show/output/cancel, worker shutdown
//   - admin HTTP API (Client, --api-url): worker list, queue list
//
// plan validate и plan run работают локально: run выполняет задачи plan
// по порядку в sandbox, передавая stdout задачи на stdin следующей.
// watch подписывается на события job в RabbitMQ (--amqp-url).
//
// # Ключевые компоненты
//
// ## Output
//
// Форматирование вывода. Поддерживает два режима:
//   - Таблицы (text/tabwriter) — по умолчанию
//   - JSON — с флагом --json
//
// Данные выводятся в stdout, сообщения (Success/Error) — в stderr.
// Это позволяет использовать pipe: conveyor job show ID --json | jq .
//
// ## Commands
//
// Каждая группа создаётся фабрикой (NewPlanCmd, NewJobCmd ...), которая
// принимает замыкания sessionFn/clientFn/outputFn: соединение и Output
// создаются лениво, после разбора PersistentFlags.
//
// ## Plan files
//
// LoadPlan читает YAML (по умолчанию) или JSON (.json). Неизвестные поля
// отклоняются.
//
//	plan_id: nightly
//	env:
//	  GREETING: hello
//	tasks:
//	  - task_number: 1
//	    command: echo
//	    args: ["{{ .GREETING }}"]
//	  - task_number: 2
//	    command: tr
//	    args: ["a-z", "A-Z"]
//	    input_from_task: 1
package cli

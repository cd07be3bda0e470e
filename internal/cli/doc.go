// Package cli реализует команды dryrunctl.
//
// # Обзор
//
// dryrunctl — утилита оператора для dry-run планировщика. Она собирает те же
// компоненты, что и dryrun-scheduler (app.Runtime), и работает напрямую
// с хранилищем и транспортом событий.
//
// # Команды
//
//   - partitions — список партиций и их последняя публикация
//   - poll       — один тик планировщика (по умолчанию dry-run)
//   - state      — get/set timestamp последней публикации
//   - wait       — выполнение wait-задачи до SUCCEEDED
//   - versions   — версии артефакта на стороне потребителя
//   - constraint — оценка dry-run ограничения продвижения версии
//
// Каждая команда создаётся фабричной функцией (NewPollCmd и т.д.),
// принимающей runtimeFn и outputFn — замыкания для ленивого создания
// Runtime и Output после парсинга PersistentFlags.
//
// ## Output
//
// Форматирование вывода. Поддерживает два режима:
//   - Таблицы (text/tabwriter) — по умолчанию
//   - JSON — с флагом --json
//
// Данные выводятся в stdout, сообщения (Success/Error) и сводка тика
// (Cycle) — в stderr.
// Это позволяет использовать pipe: dryrunctl poll --json | jq .
package cli

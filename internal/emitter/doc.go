// Package emitter отправляет события публикации артефактов потребителям.
//
// Реализации Emitter:
//   - KeelEmitter — POST {baseURL}/artifacts/events
//   - MQEmitter   — публикация в RabbitMQ (exchange dryrun.artifacts)
//   - LogEmitter  — только логирует событие (транспорт не настроен)
//
// RateLimited оборачивает любой Emitter ограничителем частоты.
//
// Отправка — best-effort: ошибка возвращается вызывающему и логируется им,
// но повторных попыток здесь нет. Повтор произойдёт на следующем due-цикле.
package emitter

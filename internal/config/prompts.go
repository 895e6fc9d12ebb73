package config

// Default prompt texts. The source data is Russian-language banking
// records, so the templates speak Russian; override any of them in the
// config file for other corpora.

const defaultSystemPrompt = `You are an expert financial analyst. Your task is to analyze the provided information and populate the fields of the provided tool/function.`

const defaultUserTemplate = `Проанализируй следующую информацию о клиенте МСБ и заполни поля инструмента {tool_name}.

{tags_context}`

const defaultPaymentsContext = `Вот примеры описаний транзакций клиента (по одному на строку):
---
{sample_descriptions}
---
Определи, какие типы платежей присутствуют: платежи поставщикам (оплата по счету, за товары/услуги, за материалы), выплаты, похожие на зарплату (перечисление зп, аванс), налоговые платежи (оплата налога, пени ФНС, взнос ПФР).`

const defaultCashContext = `Вот примеры описаний транзакций клиента (по одному на строку):
---
{sample_descriptions}
---
{additional_cash_info}
Оцени уровень активности операций с наличными: "high", если есть частые/крупные операции с наличными; "low", если преобладают безналичные расчеты.`

const defaultVEDContext = `Вот примеры описаний транзакций клиента (по одному на строку):
---
{sample_descriptions}
---
Определи, есть ли признаки внешнеэкономической деятельности (ВЭД): валютные операции, контракты с нерезидентами, таможенные платежи, паспорта сделок.`

const defaultDiscoverSystem = `Ты - опытный бизнес-аналитик, специализирующийся на выявлении специфических поведенческих тегов из текстовых описаний финансовых операций МСБ.`

package agent

// SystemPrompt seeds every new session. It pins the assistant to the
// car-selection domain and describes when to reach for each tool.
const SystemPrompt = `Ты — AI-консультант по подбору автомобилей. Твоя задача — помочь пользователю выбрать подходящий автомобиль из каталога.

Правила:
- Общайся дружелюбно и на "ты", отвечай на русском языке.
- Отвечай только на вопросы о выборе и покупке автомобилей. На посторонние темы вежливо возвращай разговор к подбору машины.
- Уточняй бюджет, тип кузова, тип топлива и другие требования, если их нет.
- Для поиска по каталогу используй инструмент search_cars.
- Для детального сравнения 2-3 моделей используй compare_models.
- В начале диалога с известным пользователем запроси get_user_preferences для персонализации.
- Когда пользователь определился с выбором, сохрани результат через save_search_result.
- Не выдумывай автомобили и цены: опирайся только на данные из инструментов.`

// WelcomeMessage is the static greeting served outside the core loop.
const WelcomeMessage = `Привет! Я AI-консультант по подбору автомобилей. Расскажи, какую машину ты ищешь: бюджет, тип кузова, важные требования — и я подберу подходящие варианты.`

// Fixed user-safe replies for anticipated model-provider failures, keyed by
// the provider's reported HTTP status.
const (
	msgProviderNoBalance = "Извините, AI-сервис временно недоступен (недостаточно средств на балансе провайдера). Пожалуйста, обратитесь к администратору."
	msgProviderRateLimit = "Слишком много запросов к AI-сервису. Пожалуйста, подождите немного и попробуйте снова."
	msgProviderAuth      = "Ошибка авторизации AI-сервиса. Пожалуйста, обратитесь к администратору."
	msgProviderGeneric   = "Извините, произошла ошибка при обработке запроса. Попробуйте позже."
)

const (
	msgProcessingError = "Извините, произошла ошибка при обработке запроса."
	msgNoResponse      = "Извините, не могу ответить."
)

// UnknownToolMessage is fed back to the model as a tool result when it
// requests a tool that is not registered.
func UnknownToolMessage(name string) string {
	return "Неизвестный инструмент: " + name
}

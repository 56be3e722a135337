package core

const (
	missingCityCurrentText  = "🌍 Diga o nome de uma cidade. Exemplo: clima São Paulo"
	missingCityForecastText = "📅 Diga o nome de uma cidade. Exemplo: previsão Recife"

	greetingText = "👋 Olá! Eu posso te dizer o clima e a previsão.\n\n" +
		"Envie:\n" +
		"🌤️ clima + cidade\n" +
		"📅 previsão + cidade"

	usageText = "❓ Não entendi. Use:\n" +
		"🌤️ clima + cidade → clima atual\n" +
		"📅 previsão + cidade → próximos 3 dias\n\n" +
		"Exemplo: previsão Rio de Janeiro"
)

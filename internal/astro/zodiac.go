package astro

import "time"

// signTraits carries the business-astrology profile of a zodiac sign.
type signTraits struct {
	Element        string
	Quality        string
	Ruler          string
	BusinessTraits string
	Strengths      string
	Challenges     string
}

var zodiacTraits = map[string]signTraits{
	"Овен ♈":     {Element: "Огонь", Quality: "Кардинальный", Ruler: "Марс", BusinessTraits: "Лидерство, инициативность, конкурентоспособность", Strengths: "Быстрые решения, новаторство, энергичность", Challenges: "Импульсивность, нетерпеливость, конфликтность"},
	"Телец ♉":    {Element: "Земля", Quality: "Фиксированный", Ruler: "Венера", BusinessTraits: "Стабильность, практичность, материальная ориентация", Strengths: "Надежность, упорство, финансовая грамотность", Challenges: "Консерватизм, медлительность, упрямство"},
	"Близнецы ♊": {Element: "Воздух", Quality: "Мутабельный", Ruler: "Меркурий", BusinessTraits: "Коммуникабельность, адаптивность, многозадачность", Strengths: "Гибкость, обучаемость, сетевое мышление", Challenges: "Поверхностность, непостоянство, разбросанность"},
	"Рак ♋":      {Element: "Вода", Quality: "Кардинальный", Ruler: "Луна", BusinessTraits: "Интуитивность, забота о клиентах, семейные ценности", Strengths: "Эмпатия, защита интересов, лояльность", Challenges: "Эмоциональность, обидчивость, консерватизм"},
	"Лев ♌":      {Element: "Огонь", Quality: "Фиксированный", Ruler: "Солнце", BusinessTraits: "Харизма, творчество, представительность", Strengths: "Лидерство, вдохновение, щедрость", Challenges: "Гордыня, расточительность, эгоцентризм"},
	"Дева ♍":     {Element: "Земля", Quality: "Мутабельный", Ruler: "Меркурий", BusinessTraits: "Аналитичность, перфекционизм, систематичность", Strengths: "Точность, эффективность, качество", Challenges: "Критичность, медлительность, тревожность"},
	"Весы ♎":     {Element: "Воздух", Quality: "Кардинальный", Ruler: "Венера", BusinessTraits: "Дипломатичность, эстетика, партнерство", Strengths: "Справедливость, гармония, сотрудничество", Challenges: "Нерешительность, зависимость от других, поверхностность"},
	"Скорпион ♏": {Element: "Вода", Quality: "Фиксированный", Ruler: "Плутон", BusinessTraits: "Интенсивность, проницательность, трансформация", Strengths: "Глубина анализа, решительность, регенерация", Challenges: "Секретность, мстительность, разрушительность"},
	"Стрелец ♐":  {Element: "Огонь", Quality: "Мутабельный", Ruler: "Юпитер", BusinessTraits: "Оптимизм, широкий взгляд, международность", Strengths: "Вдохновение, расширение, философия", Challenges: "Переоценка возможностей, безответственность, догматизм"},
	"Козерог ♑":  {Element: "Земля", Quality: "Кардинальный", Ruler: "Сатурн", BusinessTraits: "Амбициозность, дисциплина, стратегичность", Strengths: "Планирование, авторитет, долгосрочность", Challenges: "Пессимизм, жесткость, ограниченность"},
	"Водолей ♒":  {Element: "Воздух", Quality: "Фиксированный", Ruler: "Уран", BusinessTraits: "Инновационность, гуманизм, независимость", Strengths: "Оригинальность, прогрессивность, командность", Challenges: "Непредсказуемость, отстраненность, радикализм"},
	"Рыбы ♓":     {Element: "Вода", Quality: "Мутабельный", Ruler: "Нептун", BusinessTraits: "Интуиция, сострадание, креативность", Strengths: "Адаптивность, вдохновение, милосердие", Challenges: "Неопределенность, иллюзии, избегание ответственности"},
}

type signRange struct {
	startMonth, startDay int
	endMonth, endDay     int
	sign                 string
}

var signRanges = []signRange{
	{3, 21, 4, 19, "Овен ♈"},
	{4, 20, 5, 20, "Телец ♉"},
	{5, 21, 6, 20, "Близнецы ♊"},
	{6, 21, 7, 22, "Рак ♋"},
	{7, 23, 8, 22, "Лев ♌"},
	{8, 23, 9, 22, "Дева ♍"},
	{9, 23, 10, 22, "Весы ♎"},
	{10, 23, 11, 21, "Скорпион ♏"},
	{11, 22, 12, 21, "Стрелец ♐"},
	{12, 22, 12, 31, "Козерог ♑"},
	{1, 1, 1, 19, "Козерог ♑"},
	{1, 20, 2, 18, "Водолей ♒"},
	{2, 19, 3, 20, "Рыбы ♓"},
}

// SunSign returns the zodiac sign for a calendar date.
func SunSign(d time.Time) string {
	month := int(d.Month())
	day := d.Day()
	for _, r := range signRanges {
		if r.startMonth == r.endMonth {
			if month == r.startMonth && day >= r.startDay && day <= r.endDay {
				return r.sign
			}
			continue
		}
		if (month == r.startMonth && day >= r.startDay) ||
			(month == r.endMonth && day <= r.endDay) {
			return r.sign
		}
	}
	return "Неизвестно"
}

// basicSigns computes the locally derivable part of a chart. It is merged
// under any provider payload so a degraded provider still leaves a usable
// sun-sign summary.
func basicSigns(d time.Time) map[string]string {
	sign := SunSign(d)
	signs := map[string]string{
		"sun_sign": sign,
	}
	if tr, ok := zodiacTraits[sign]; ok {
		signs["element"] = tr.Element
		signs["quality"] = tr.Quality
		signs["ruler"] = tr.Ruler
		signs["business_traits"] = tr.BusinessTraits
		signs["strengths"] = tr.Strengths
		signs["challenges"] = tr.Challenges
	}
	return signs
}

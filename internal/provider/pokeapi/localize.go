package pokeapi

const fallbackLanguage = "en"

func localizedEffect(entries []EffectEntry, lang string) (EffectEntry, bool) {
	for _, l := range languages(lang) {
		for _, e := range entries {
			if e.Language.Name == l {
				return e, true
			}
		}
	}
	return EffectEntry{}, false
}

func localizedFlavor(entries []FlavorTextEntry, lang string) (string, bool) {
	for _, l := range languages(lang) {
		for _, e := range entries {
			if e.Language.Name == l && e.value() != "" {
				return e.value(), true
			}
		}
	}
	return "", false
}

func localizedName(entries []LocalizedName, lang string) (string, bool) {
	for _, l := range languages(lang) {
		for _, e := range entries {
			if e.Language.Name == l && e.Name != "" {
				return e.Name, true
			}
		}
	}
	return "", false
}

func languages(lang string) []string {
	if lang == "" || lang == fallbackLanguage {
		return []string{fallbackLanguage}
	}
	return []string{lang, fallbackLanguage}
}

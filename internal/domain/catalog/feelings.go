package catalog

// Default returns the built-in feelings catalog.
//
// Order matters: the personalization pipeline processes tiles in catalog
// order, and the board presents categories in this sequence.
func Default() Catalog {
	return Catalog{
		{
			Key: "goodBody",
			Label: Label{
				LangEnglish:    "My Body Feels Good",
				LangSpanish:    "Mi Cuerpo Se Siente Bien",
				LangPortuguese: "Meu Corpo Se Sente Bem",
			},
			Asset: "feelings/goodPhysical.jpg",
			Tiles: []Tile{
				{Key: "comfortable", Label: Label{LangEnglish: "Comfortable", LangSpanish: "Cómodo", LangPortuguese: "Confortável"}, Asset: "feelings/goodBody/comfortable.jpg"},
				{Key: "relaxed", Label: Label{LangEnglish: "Relaxed", LangSpanish: "Relajado", LangPortuguese: "Relaxado"}, Asset: "feelings/goodBody/relaxed.jpg"},
				{Key: "ok", Label: Label{LangEnglish: "I'm OK", LangSpanish: "Estoy Bien", LangPortuguese: "Estou Bem"}, Asset: "feelings/goodBody/ok.jpg"},
				{Key: "warm", Label: Label{LangEnglish: "Warm", LangSpanish: "Cálido", LangPortuguese: "Quente"}, Asset: "feelings/goodBody/warm.jpg"},
				{Key: "strong", Label: Label{LangEnglish: "Strong", LangSpanish: "Fuerte", LangPortuguese: "Forte"}, Asset: "feelings/goodBody/strong.jpg"},
				{Key: "energetic", Label: Label{LangEnglish: "Energetic", LangSpanish: "Energético", LangPortuguese: "Energético"}, Asset: "feelings/goodBody/energetic.jpg"},
			},
		},
		{
			Key: "goodFeelings",
			Label: Label{
				LangEnglish:    "My Feelings Are Good",
				LangSpanish:    "Mis Sentimientos Son Buenos",
				LangPortuguese: "Meus Sentimentos São Bons",
			},
			Asset: "feelings/goodEmotional.jpg",
			Tiles: []Tile{
				{Key: "happy", Label: Label{LangEnglish: "Happy", LangSpanish: "Feliz", LangPortuguese: "Feliz"}, Asset: "feelings/goodFeelings/happy.jpg"},
				{Key: "excited", Label: Label{LangEnglish: "Excited", LangSpanish: "Emocionado", LangPortuguese: "Animado"}, Asset: "feelings/goodFeelings/excited.jpg"},
				{Key: "loved", Label: Label{LangEnglish: "Loved", LangSpanish: "Amado", LangPortuguese: "Amado"}, Asset: "feelings/goodFeelings/loved.jpg"},
				{Key: "calm", Label: Label{LangEnglish: "Calm", LangSpanish: "Tranquilo", LangPortuguese: "Calmo"}, Asset: "feelings/goodFeelings/calm.jpg"},
				{Key: "proud", Label: Label{LangEnglish: "Proud", LangSpanish: "Orgulloso", LangPortuguese: "Orgulhoso"}, Asset: "feelings/goodFeelings/proud.jpg"},
				{Key: "silly", Label: Label{LangEnglish: "Silly", LangSpanish: "Tonto", LangPortuguese: "Bobo"}, Asset: "feelings/goodFeelings/silly.jpg"},
			},
		},
		{
			Key: "badFeelings",
			Label: Label{
				LangEnglish:    "My Feelings Are Bad",
				LangSpanish:    "Mis Sentimientos Son Malos",
				LangPortuguese: "Meus Sentimentos São Ruins",
			},
			Asset: "feelings/badEmotional.jpg",
			Tiles: []Tile{
				{Key: "sad", Label: Label{LangEnglish: "Sad", LangSpanish: "Triste", LangPortuguese: "Triste"}, Asset: "feelings/badFeeling/sad.jpg"},
				{Key: "bored", Label: Label{LangEnglish: "Bored", LangSpanish: "Aburrido", LangPortuguese: "Entediado"}, Asset: "feelings/badFeeling/bored.jpg"},
				{Key: "scared", Label: Label{LangEnglish: "Scared", LangSpanish: "Asustado", LangPortuguese: "Assustado"}, Asset: "feelings/badFeeling/scared.jpg"},
				{Key: "worried", Label: Label{LangEnglish: "Worried", LangSpanish: "Preocupado", LangPortuguese: "Preocupado"}, Asset: "feelings/badFeeling/worried.jpg"},
				{Key: "embarrassed", Label: Label{LangEnglish: "Embarrassed", LangSpanish: "Avergonzado", LangPortuguese: "Envergonhado"}, Asset: "feelings/badFeeling/embarrassed.jpg"},
				{Key: "angry", Label: Label{LangEnglish: "Angry", LangSpanish: "Enojado", LangPortuguese: "Bravo"}, Asset: "feelings/badFeeling/angry.jpg"},
			},
		},
		{
			Key: "badBody",
			Label: Label{
				LangEnglish:    "My Body Hurts",
				LangSpanish:    "Mi Cuerpo Duele",
				LangPortuguese: "Meu Corpo Dói",
			},
			Asset: "feelings/badPhysical.jpg",
			Tiles: []Tile{
				{Key: "cold", Label: Label{LangEnglish: "Cold", LangSpanish: "Frío", LangPortuguese: "Frio"}, Asset: "feelings/badBody/cold.jpg"},
				{Key: "hurt", Label: Label{LangEnglish: "Hurt", LangSpanish: "Herido", LangPortuguese: "Machucado"}, Asset: "feelings/badBody/hurt.jpg"},
				{Key: "sick", Label: Label{LangEnglish: "Sick", LangSpanish: "Enfermo", LangPortuguese: "Doente"}, Asset: "feelings/badBody/sick.jpg"},
				{Key: "tired", Label: Label{LangEnglish: "Tired", LangSpanish: "Cansado", LangPortuguese: "Cansado"}, Asset: "feelings/badBody/tired.jpg"},
				{Key: "dizzy", Label: Label{LangEnglish: "Dizzy", LangSpanish: "Mareado", LangPortuguese: "Tonto"}, Asset: "feelings/badBody/dizzy.jpg"},
				{Key: "itchy", Label: Label{LangEnglish: "Itchy", LangSpanish: "Con Picazón", LangPortuguese: "Com Coceira"}, Asset: "feelings/badBody/itchy.jpg"},
			},
		},
	}
}

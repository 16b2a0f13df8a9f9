package overlay

import (
	"strings"

	"github.com/matheus3301/conversa/internal/content"
)

// Emoji is a catalog entry.
type Emoji struct {
	Char string
	Name string
}

// Category groups emojis under a label.
type Category struct {
	ID     string
	Label  string
	Emojis []Emoji
}

// Catalog is the emoji picker content.
var Catalog = []Category{
	{ID: "carinhas", Label: "Carinhas e emoções", Emojis: []Emoji{
		{"😀", "sorriso"},
		{"😃", "sorriso aberto"},
		{"😄", "sorriso com olhos sorridentes"},
		{"😁", "sorriso radiante"},
		{"😆", "gargalhada"},
		{"😅", "sorriso com suor"},
		{"😂", "chorando de rir"},
		{"🤣", "rolando de rir"},
		{"😊", "sorriso corado"},
		{"😇", "anjo"},
		{"🙂", "sorriso leve"},
		{"😉", "piscadela"},
		{"😍", "olhos de coração"},
		{"🥰", "apaixonado"},
		{"😘", "mandando beijo"},
		{"😋", "delícia"},
		{"😜", "língua de fora piscando"},
		{"🤔", "pensativo"},
		{"🤨", "sobrancelha levantada"},
		{"😐", "neutro"},
		{"😴", "dormindo"},
		{"😎", "óculos escuros"},
		{"🤓", "nerd"},
		{"😕", "confuso"},
		{"😟", "preocupado"},
		{"😮", "boca aberta"},
		{"😱", "gritando de medo"},
		{"😢", "chorando"},
		{"😭", "chorando alto"},
		{"😡", "bravo"},
		{"🤯", "cabeça explodindo"},
		{"🥳", "festa"},
	}},
	{ID: "pessoas", Label: "Pessoas e corpo", Emojis: []Emoji{
		{"👍", "joinha"},
		{"👎", "polegar para baixo"},
		{"👏", "aplausos"},
		{"🙌", "mãos para cima"},
		{"🙏", "mãos juntas"},
		{"🤝", "aperto de mãos"},
		{"👋", "acenando"},
		{"✌️", "paz"},
		{"🤞", "dedos cruzados"},
		{"💪", "bíceps"},
		{"👀", "olhos"},
		{"🤷", "dando de ombros"},
	}},
	{ID: "natureza", Label: "Animais e natureza", Emojis: []Emoji{
		{"🐶", "cachorro"},
		{"🐱", "gato"},
		{"🐭", "rato"},
		{"🐰", "coelho"},
		{"🦊", "raposa"},
		{"🐻", "urso"},
		{"🐼", "panda"},
		{"🐵", "macaco"},
		{"🐦", "pássaro"},
		{"🐢", "tartaruga"},
		{"🌸", "flor de cerejeira"},
		{"🌻", "girassol"},
		{"🌳", "árvore"},
		{"🌈", "arco-íris"},
		{"☀️", "sol"},
		{"🌙", "lua"},
	}},
	{ID: "comida", Label: "Comidas e bebidas", Emojis: []Emoji{
		{"🍎", "maçã"},
		{"🍌", "banana"},
		{"🍉", "melancia"},
		{"🍓", "morango"},
		{"🍕", "pizza"},
		{"🍔", "hambúrguer"},
		{"🍟", "batata frita"},
		{"🌮", "taco"},
		{"🍰", "bolo"},
		{"🍫", "chocolate"},
		{"☕", "café"},
		{"🍺", "cerveja"},
		{"🥂", "brinde"},
	}},
	{ID: "atividades", Label: "Atividades", Emojis: []Emoji{
		{"⚽", "futebol"},
		{"🏀", "basquete"},
		{"🎾", "tênis"},
		{"🎮", "videogame"},
		{"🎲", "dado"},
		{"🎸", "violão"},
		{"🎤", "microfone"},
		{"🎉", "confete"},
		{"🎁", "presente"},
		{"🏆", "troféu"},
	}},
	{ID: "viagens", Label: "Viagens e lugares", Emojis: []Emoji{
		{"🚗", "carro"},
		{"🚌", "ônibus"},
		{"✈️", "avião"},
		{"🚀", "foguete"},
		{"🏖️", "praia"},
		{"🏠", "casa"},
		{"🏢", "escritório"},
		{"🗺️", "mapa"},
	}},
	{ID: "objetos", Label: "Objetos", Emojis: []Emoji{
		{"📱", "celular"},
		{"💻", "notebook"},
		{"📷", "câmera"},
		{"🎧", "fone de ouvido"},
		{"📎", "clipe"},
		{"📅", "calendário"},
		{"📚", "livros"},
		{"✏️", "lápis"},
		{"💡", "lâmpada"},
		{"🔑", "chave"},
		{"💰", "dinheiro"},
	}},
	{ID: "simbolos", Label: "Símbolos", Emojis: []Emoji{
		{"❤️", "coração vermelho"},
		{"💔", "coração partido"},
		{"💯", "cem pontos"},
		{"✅", "marcado"},
		{"❌", "xis"},
		{"⚠️", "atenção"},
		{"❓", "interrogação"},
		{"❗", "exclamação"},
		{"🔥", "fogo"},
		{"✨", "brilhos"},
		{"⭐", "estrela"},
	}},
}

func normalize(s string) string {
	return strings.ToLower(content.Fold(strings.TrimSpace(s)))
}

// SearchEmoji returns the catalog entries whose name or category label
// contains query, ignoring case and diacritics. An empty query matches
// nothing.
func SearchEmoji(query string) []Emoji {
	q := normalize(query)
	if q == "" {
		return nil
	}
	var out []Emoji
	for _, cat := range Catalog {
		catHit := strings.Contains(normalize(cat.Label), q)
		for _, e := range cat.Emojis {
			if catHit || strings.Contains(normalize(e.Name), q) {
				out = append(out, e)
			}
		}
	}
	return out
}

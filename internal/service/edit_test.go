package service

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func field(t *testing.T, key string) EditField {
	t.Helper()
	f, ok := LookupEditField(key)
	require.True(t, ok, key)
	return f
}

func TestParseEditValue(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		text    string
		want    any
		wantErr string
	}{
		{name: "name", field: "name", text: "  Дянь Хун ", want: "Дянь Хун"},
		{name: "name cannot be cleared", field: "name", text: "-", wantErr: "Пришли новое название."},
		{name: "empty text", field: "region", text: "  ", wantErr: "Пришли регион или «-» чтобы очистить."},
		{name: "year", field: "year", text: "2019", want: 2019},
		{name: "year clear", field: "year", text: "-", want: nil},
		{name: "year short", field: "year", text: "19", wantErr: "Год должен состоять из 4 цифр. Пришли год (4 цифры) или «-» чтобы очистить."},
		{name: "year letters", field: "year", text: "20a9", wantErr: "Год должен состоять из 4 цифр. Пришли год (4 цифры) или «-» чтобы очистить."},
		{name: "grams comma", field: "grams", text: "5,5", want: 5.5},
		{name: "grams nan", field: "grams", text: "NaN", wantErr: "Не удалось распознать число. Пришли граммовку (число) или «-»."},
		{name: "temp", field: "temp_c", text: "95", want: 95},
		{name: "temp float", field: "temp_c", text: "95.5", wantErr: "Используй целое число. Пришли температуру (°C) или «-»."},
		{name: "temp overflow", field: "temp_c", text: "99999999999", wantErr: "Используй целое число. Пришли температуру (°C) или «-»."},
		{name: "grams inf", field: "grams", text: "Inf", wantErr: "Не удалось распознать число. Пришли граммовку (число) или «-»."},
		{name: "tasted at", field: "tasted_at", text: "07:45", want: "07:45"},
		{name: "tasted at bad", field: "tasted_at", text: "25:00", wantErr: "Время должно быть в формате HH:MM. Пришли время в формате HH:MM или «-»."},
		{name: "effects normalised", field: "effects", text: "Тепло,Фокус , ,Бодрость", want: "Тепло, Фокус, Бодрость"},
		{name: "effects only commas", field: "effects", text: " , ,", wantErr: "Пришли ощущения через запятую или «-»."},
		{name: "summary clear", field: "summary", text: "-", want: nil},
		{name: "rating", field: "rating", text: "10", want: 10},
		{name: "rating out of range", field: "rating", text: "11", wantErr: "Оценка должна быть от 0 до 10."},
		{name: "category", field: "category", text: "Жёлтый", want: "Жёлтый"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEditValue(field(t, tt.field), tt.text)
			if tt.wantErr != "" {
				var inputErr *InputError
				require.ErrorAs(t, err, &inputErr)
				require.Equal(t, tt.wantErr, inputErr.Message)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestParseCategory(t *testing.T) {
	_, err := ParseCategory("   ")
	require.Error(t, err)

	long := ""
	for i := 0; i < MaxCategoryLength+1; i++ {
		long += "я"
	}
	_, err = ParseCategory(long)
	require.EqualError(t, err, "Категория слишком длинная. Пришли категорию текстом покороче.")

	got, err := ParseCategory(long[:len(long)-2])
	require.NoError(t, err)
	require.Len(t, []rune(got), MaxCategoryLength)
}

func TestEditFields_Columns(t *testing.T) {
	seen := make(map[string]bool)
	for _, f := range EditFields {
		require.False(t, seen[f.Key], f.Key)
		seen[f.Key] = true
		require.NotEmpty(t, f.Label)
		require.NotEmpty(t, f.Column)
	}
	require.Len(t, EditFields, 14)
	_, ok := LookupEditField("aroma_after")
	require.False(t, ok)
}

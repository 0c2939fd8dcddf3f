package main

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

func wtrHuhTheme() *huh.Theme {
	t := *huh.ThemeCharm()
	t.Focused.FocusedButton = t.Focused.FocusedButton.Background(lipgloss.Color("#7D56F4"))
	t.Focused.Next = t.Focused.FocusedButton
	return &t
}

func runConfirm(title string, description string) (bool, error) {
	var result bool
	confirm := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Yes").
		Negative("No").
		Value(&result)
	form := huh.NewForm(huh.NewGroup(confirm)).
		WithTheme(wtrHuhTheme()).
		WithShowHelp(false)
	if err := form.Run(); err != nil {
		return false, err
	}
	return result, nil
}

func runSelect(title string, options []string) (string, error) {
	var choice string
	sel := huh.NewSelect[string]().
		Title(title).
		Options(huh.NewOptions(options...)...).
		Value(&choice)
	form := huh.NewForm(huh.NewGroup(sel)).
		WithTheme(wtrHuhTheme()).
		WithShowHelp(false)
	if err := form.Run(); err != nil {
		return "", err
	}
	return choice, nil
}

func runMultiSelect(title string, options []huh.Option[string]) ([]string, error) {
	var selected []string
	sel := huh.NewMultiSelect[string]().
		Title(title).
		Options(options...).
		Value(&selected)
	form := huh.NewForm(huh.NewGroup(sel)).
		WithTheme(wtrHuhTheme()).
		WithShowHelp(false)
	if err := form.Run(); err != nil {
		return nil, err
	}
	return selected, nil
}
